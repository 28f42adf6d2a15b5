package auth

import (
	"context"
	"crypto/x509"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-connectedcar/internal/config"
	"github.com/jrsteele09/go-connectedcar/internal/errors"
	"github.com/jrsteele09/go-connectedcar/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const defaultHTTPTimeout = 30 * time.Second

// Service drives the login of a session: the one-time legacy ticket login
// that resolves the customer id, then the recurring OAuth password and
// refresh grants. It owns the session state it is given.
type Service struct {
	state      *sessions.State
	repo       sessions.Repo
	cfg        config.APIConfig
	httpClient *http.Client
	rootCAs    *x509.CertPool   // trust roots for the mutual-TLS lookup, nil means system roots
	lookupURL  string           // fmt template taking the lower-cased brand code
	nowTime    func() time.Time // injectable for testing
	lock       sync.Mutex       // serializes check-then-refresh
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithHTTPClient sets the client used for the ticket and token calls. Its
// timeout also applies to the mutual-TLS user lookup.
func WithHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = c
	}
}

// WithAPIConfig sets the fixed application values sent to the vendor endpoints.
func WithAPIConfig(cfg config.APIConfig) ServiceOption {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithRootCAs sets the roots the user lookup endpoint is verified against.
func WithRootCAs(pool *x509.CertPool) ServiceOption {
	return func(s *Service) {
		s.rootCAs = pool
	}
}

// WithUserLookupURL overrides the user lookup URL template. The template
// takes the lower-cased brand code.
func WithUserLookupURL(template string) ServiceOption {
	return func(s *Service) {
		s.lookupURL = template
	}
}

// NewService creates a Service for state. Changes to state are saved to
// repo after a bootstrap and after every token issuance.
func NewService(state *sessions.State, repo sessions.Repo, options ...ServiceOption) (*Service, error) {
	if state == nil {
		return nil, errors.Wrapf(NoStateErr, "[NewService]")
	}
	if repo == nil {
		return nil, errors.Wrapf(NoRepoErr, "[NewService]")
	}

	s := &Service{
		state:      state,
		repo:       repo,
		cfg:        config.API{},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.lookupURL == "" {
		s.lookupURL = s.cfg.GetUserLookupURL()
	}
	return s, nil
}

// CustomerID returns the cached customer id, empty before the bootstrap.
func (s *Service) CustomerID() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state.CustomerID
}

// ResetTokens drops the cached tokens so the next EnsureValidToken uses the
// password grant.
func (s *Service) ResetTokens() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.state.ClearTokens()
	log.Info().Msg("Cached tokens cleared")
	return s.repo.Save(s.state)
}

// TokenSource returns an oauth2.TokenSource gated by EnsureValidToken.
func (s *Service) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, service: s}
}

type tokenSource struct {
	ctx     context.Context
	service *Service
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	return ts.service.EnsureValidToken(ts.ctx)
}
