// Package connectedcar is a small client for the connected car API. Every
// request asks its token source for a token first, so the auth service
// decides whether a new token is needed.
package connectedcar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-connectedcar/internal/errors"
	"github.com/jrsteele09/go-connectedcar/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	vehiclesPath = "connectedcar/v4/user/vehicles"
	realmHeader  = "x-introspect-realm"
	maxBodySize  = 4 << 20
)

// Client calls the connected car API with a bearer token from its source.
type Client struct {
	baseURL  string
	clientID string
	realm    string
	http     *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	base    http.RoundTripper
	timeout time.Duration
}

// WithTransport sets the transport the bearer transport wraps.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.base = rt
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// NewClient creates a client for the API host and OAuth client of api.
// src is consulted before every request.
func NewClient(src oauth2.TokenSource, api sessions.Config, options ...ClientOption) (*Client, error) {
	if api.APIHost == "" || api.ClientID == "" {
		return nil, errors.Wrapf(NoAPIHostErr, "[NewClient]")
	}
	opts := clientOptions{base: http.DefaultTransport, timeout: 30 * time.Second}
	for _, opt := range options {
		opt(&opts)
	}
	return &Client{
		baseURL:  strings.TrimRight(api.APIHost, "/"),
		clientID: api.ClientID,
		realm:    api.Realm,
		http: &http.Client{
			Transport: &oauth2.Transport{Source: src, Base: opts.base},
			Timeout:   opts.timeout,
		},
	}, nil
}

// ListVehicles returns the first page of the user's vehicles.
func (c *Client) ListVehicles(ctx context.Context) (*VehiclesPage, error) {
	var page VehiclesPage
	if err := c.get(ctx, "connectedcar.ListVehicles", vehiclesPath, &page); err != nil {
		return nil, err
	}
	log.Debug().Int("total", page.Total).Msg("Vehicles listed")
	return &page, nil
}

// GetVehicleStatus returns the status of the vehicle with the API id.
func (c *Client) GetVehicleStatus(ctx context.Context, id string) (*VehicleStatus, error) {
	var status VehicleStatus
	path := vehiclesPath + "/" + url.PathEscape(id) + "/status"
	if err := c.get(ctx, "connectedcar.GetVehicleStatus", path, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	u := c.baseURL + "/" + path + "?" + url.Values{"client_id": {c.clientID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(errors.KindNetwork, op, err)
	}
	req.Header.Set("Accept", "application/hal+json")
	req.Header.Set(realmHeader, c.realm)

	resp, err := c.http.Do(req)
	if err != nil {
		// token source failures keep their own tag
		return errors.Wrap(errors.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(errors.KindNetwork, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(errors.KindNetwork, op, "unexpected status %s", resp.Status).
			WithDetails(map[string]string{"status": strconv.Itoa(resp.StatusCode)})
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.New(errors.KindFormat, op, "decode response: %v", err)
	}
	return nil
}
