package sessions

import (
	"time"

	"github.com/jrsteele09/go-connectedcar/apk"
	"gopkg.in/yaml.v3"
)

// Config is the part of the session the token lifecycle works on. Only the
// auth package mutates it.
type Config struct {
	Realm        string  `yaml:"realm"`
	OAuthURL     string  `yaml:"oauth_url"`
	APIHost      string  `yaml:"host_api_prod"`
	ClientID     string  `yaml:"client_id"`
	ClientSecret string  `yaml:"client_secret"`
	Email        string  `yaml:"client_email"`
	Password     string  `yaml:"client_password"`
	RefreshToken string  `yaml:"refresh_token"`
	AccessToken  string  `yaml:"access_token"`
	TokenExpires *Expiry `yaml:"token_expires,omitempty"`
}

// State is the persisted session record.
type State struct {
	API         Config `yaml:"api"`
	Cert        string `yaml:"cert"`
	Key         string `yaml:"key"`
	BrandIDHost string `yaml:"host_brandid_prod"`
	SiteCode    string `yaml:"site_code"`
	Culture     string `yaml:"culture"`
	BrandCode   string `yaml:"brand_code"`
	CustomerID  string `yaml:"customer_id"`
}

// Expiry is an access token expiry, persisted as unix seconds.
type Expiry struct {
	time.Time
}

func NewExpiry(t time.Time) *Expiry {
	return &Expiry{Time: t.Truncate(time.Second)}
}

func (e Expiry) MarshalYAML() (interface{}, error) {
	return e.Unix(), nil
}

func (e *Expiry) UnmarshalYAML(value *yaml.Node) error {
	var secs int64
	if err := value.Decode(&secs); err != nil {
		return err
	}
	e.Time = time.Unix(secs, 0)
	return nil
}

// HasPackage reports whether credentials were seeded from a package.
func (s *State) HasPackage() bool {
	return s.API.ClientID != ""
}

// HasOperator reports whether both operator credentials are set.
func (s *State) HasOperator() bool {
	return s.API.Email != "" && s.API.Password != ""
}

// ApplyCredentials seeds the session from freshly extracted package
// credentials. The cached customer id is cleared so the legacy login runs
// again; tokens are cleared when the OAuth client changes.
func (s *State) ApplyCredentials(c *apk.Credentials) {
	if s.API.ClientID != c.ClientID {
		s.ClearTokens()
	}
	s.API.ClientID = c.ClientID
	s.API.ClientSecret = c.ClientSecret
	s.API.APIHost = c.APIHost
	s.API.Realm = c.Realm
	s.API.OAuthURL = c.OAuthURL
	s.Cert = c.CertificatePEM
	s.Key = c.PrivateKeyPEM
	s.BrandIDHost = c.BrandIDHost
	s.SiteCode = c.SiteCode
	s.Culture = c.Culture
	s.BrandCode = c.BrandCode
	s.CustomerID = ""
}

// SetOperator stores the operator credentials used by the legacy login and
// the password grant.
func (s *State) SetOperator(email, password string) {
	if s.API.Email != email {
		s.CustomerID = ""
		s.ClearTokens()
	}
	s.API.Email = email
	s.API.Password = password
}

// ClearTokens drops access and refresh tokens, forcing the next token
// request to use the password grant.
func (s *State) ClearTokens() {
	s.API.AccessToken = ""
	s.API.RefreshToken = ""
	s.API.TokenExpires = nil
}
