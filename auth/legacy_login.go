package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-connectedcar/internal/errors"
	"github.com/jrsteele09/go-connectedcar/oauthmodel"
	"github.com/rs/zerolog/log"
)

const (
	opTicket    = "auth.RequestTicket"
	opLookup    = "auth.ResolveCustomerID"
	opBootstrap = "auth.Bootstrap"
)

// Bootstrap resolves and persists the customer id of the session through
// the legacy ticket login. It does nothing once a customer id is cached.
func (s *Service) Bootstrap(ctx context.Context) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.state.CustomerID != "" {
		log.Debug().Str("customer_id", s.state.CustomerID).Msg("Customer id cached, skipping legacy login")
		return s.state.CustomerID, nil
	}
	if !s.state.HasPackage() {
		return "", errors.Wrapf(NoPackageErr, "[Bootstrap]")
	}
	if !s.state.HasOperator() {
		return "", errors.Wrapf(NoOperatorErr, "[Bootstrap]")
	}

	cert, err := tls.X509KeyPair([]byte(s.state.Cert), []byte(s.state.Key))
	if err != nil {
		return "", errors.New(errors.KindCrypto, opBootstrap, "load client certificate: %v", err).
			WithReason(errors.ReasonMalformedContainer)
	}

	ticket, err := s.RequestTicket(ctx, s.state.BrandIDHost, s.state.SiteCode, s.state.API.Email, s.state.API.Password)
	if err != nil {
		return "", err
	}
	customerID, err := s.ResolveCustomerID(ctx, s.state.BrandCode, s.state.Culture, s.state.SiteCode, ticket, cert)
	if err != nil {
		return "", err
	}

	s.state.CustomerID = customerID
	if err := s.repo.Save(s.state); err != nil {
		return "", errors.Wrapf(err, "[Bootstrap] persist session")
	}
	return customerID, nil
}

// RequestTicket performs the legacy login against the brand id host and
// returns the ticket used by the user lookup.
func (s *Service) RequestTicket(ctx context.Context, brandIDHost, siteCode, email, password string) (string, error) {
	payload, err := json.Marshal(oauthmodel.NewAccessTokenRequest(siteCode, s.cfg.GetLegacyCulture(), email, password))
	if err != nil {
		return "", errors.Wrap(errors.KindFormat, opTicket, err)
	}
	u, err := url.Parse(strings.TrimRight(brandIDHost, "/") + "/GetAccessToken")
	if err != nil {
		return "", errors.New(errors.KindFormat, opTicket, "brand id host %q: %v", brandIDHost, err)
	}
	u.RawQuery = url.Values{"jsonRequest": {string(payload)}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return "", errors.Wrap(errors.KindNetwork, opTicket, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.cfg.GetLegacyUserAgent())

	log.Info().Str("host", u.Host).Str("site_code", siteCode).Msg("Requesting legacy ticket")
	status, body, err := send(s.httpClient, opTicket, req)
	if err != nil {
		return "", err
	}

	var resp oauthmodel.AccessTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", authErr(errors.ReasonRejected, opTicket, status, "decode response: %v", err)
	}
	if resp.ReturnCode != oauthmodel.ReturnCodeOK || resp.AccessToken == "" {
		return "", errors.New(errors.KindAuthentication, opTicket, "legacy login rejected").
			WithReason(errors.ReasonRejected).
			WithDetails(map[string]string{"returnCode": resp.ReturnCode})
	}
	return resp.AccessToken, nil
}

// ResolveCustomerID looks the customer up with ticket over mutual TLS,
// presenting cert.
func (s *Service) ResolveCustomerID(ctx context.Context, brandCode, culture, siteCode, ticket string, cert tls.Certificate) (string, error) {
	u, err := url.Parse(fmt.Sprintf(s.lookupURL, strings.ToLower(brandCode)))
	if err != nil {
		return "", errors.New(errors.KindFormat, opLookup, "user lookup url: %v", err)
	}
	u.RawQuery = url.Values{
		"culture": {culture},
		"width":   {"1080"},
		"version": {s.cfg.GetAppVersion()},
	}.Encode()

	payload, err := json.Marshal(oauthmodel.UserRequest{SiteCode: siteCode, Ticket: ticket})
	if err != nil {
		return "", errors.Wrap(errors.KindFormat, opLookup, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(errors.KindNetwork, opLookup, err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Source-Agent", s.cfg.GetSourceAgent())
	req.Header.Set("Token", ticket)
	req.Header.Set("Version", s.cfg.GetAppVersion())
	req.Header.Set("User-Agent", s.cfg.GetUserAgent())

	status, body, err := send(s.mutualTLSClient(cert), opLookup, req)
	if err != nil {
		return "", err
	}

	var resp oauthmodel.UserResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", authErr(errors.ReasonLookupFailed, opLookup, status, "decode response: %v", err)
	}
	if resp.Success == nil || resp.Success.ID == "" {
		details := resp.Errors
		if len(details) == 0 {
			details = map[string]string{"status": fmt.Sprint(status)}
		}
		return "", errors.New(errors.KindAuthentication, opLookup, "user lookup failed").
			WithReason(errors.ReasonLookupFailed).
			WithDetails(details)
	}

	log.Info().Str("customer_id", resp.Success.ID).Msg("Customer id resolved")
	return resp.Success.ID, nil
}
