package auth

import (
	"crypto/tls"
	"io"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-connectedcar/internal/errors"
)

const maxResponseSize = 1 << 20

// send performs req and reads the whole body. Only transport failures are
// returned as errors; the status is left to the caller.
func send(client *http.Client, op string, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(errors.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, errors.Wrap(errors.KindNetwork, op, err)
	}
	return resp.StatusCode, body, nil
}

// mutualTLSClient derives a client presenting cert from the configured one.
func (s *Service) mutualTLSClient(cert tls.Certificate) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      s.rootCAs,
		MinVersion:   tls.VersionTLS12,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   s.httpClient.Timeout,
	}
}

func authErr(reason errors.Reason, op string, status int, format string, args ...interface{}) error {
	e := errors.New(errors.KindAuthentication, op, format, args...).WithReason(reason)
	if status != 0 {
		e = e.WithDetails(map[string]string{"status": strconv.Itoa(status)})
	}
	return e
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
