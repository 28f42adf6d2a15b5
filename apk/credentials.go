package apk

// Credentials is everything extracted from one application package. It is
// built once per extraction and not modified afterwards.
type Credentials struct {
	PackageID      string
	ClientID       string
	ClientSecret   string
	CertificatePEM string
	PrivateKeyPEM  string
	BrandIDHost    string
	APIHost        string
	SiteCode       string // template with the country of Culture substituted
	Culture        string // selected locale, e.g. "nl-NL"
	BrandCode      string // first two characters of the site code
	Realm          string
	OAuthURL       string
}

// parameters mirrors res/raw-*/parameters.json.
type parameters struct {
	ClientID *string `json:"cvsClientId"`
	Secret   *string `json:"cvsSecret"`
}
