package config

// APIConfig holds the fixed values the vendor endpoints expect from the
// mobile application.
type APIConfig interface {
	GetAppVersion() string
	GetLegacyCulture() string
	GetUserLookupURL() string
	GetOAuthScope() string
	GetSourceAgent() string
	GetLegacyUserAgent() string
	GetUserAgent() string
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAppVersion() string {
	return "1.33.0"
}

// GetLegacyCulture is always sent to the ticket endpoint, whatever the
// selected locale.
func (API) GetLegacyCulture() string {
	return "fr-FR"
}

// GetUserLookupURL is a fmt template taking the lower-cased brand code.
func (API) GetUserLookupURL() string {
	return "https://mw-%s-m2c.mym.awsmpsa.com/api/v1/user"
}

func (API) GetOAuthScope() string {
	return "profile openid"
}

func (API) GetSourceAgent() string {
	return "App-Android"
}

func (API) GetLegacyUserAgent() string {
	return "okhttp/2.3.0"
}

func (API) GetUserAgent() string {
	return "okhttp/4.8.0"
}
