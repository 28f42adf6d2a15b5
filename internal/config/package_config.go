package config

// PackageConfig locates the credential material inside the application package.
type PackageConfig interface {
	GetCertificatePath() string
	GetCertificatePassphrase() string
	GetResourceTablePath() string
	GetBrandIDHostResource() string
	GetAPIHostResource() string
	GetSiteCodeResource() string
	GetDefaultCountry() string
}

type Package struct{}

var _ PackageConfig = Package{}

func (Package) GetCertificatePath() string {
	return "assets/MWPMYMA1.pfx"
}

func (Package) GetCertificatePassphrase() string {
	return "y5Y2my5B"
}

func (Package) GetResourceTablePath() string {
	return "resources.arsc"
}

func (Package) GetBrandIDHostResource() string {
	return "HOST_BRANDID_PROD"
}

func (Package) GetAPIHostResource() string {
	return "HOST_PSA_API_PROD"
}

// GetSiteCodeResource names the site code template, e.g. "AP_FR_ESP".
func (Package) GetSiteCodeResource() string {
	return "nologin_siteCode"
}

// GetDefaultCountry is the country embedded in the site code template.
func (Package) GetDefaultCountry() string {
	return "FR"
}
