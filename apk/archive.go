// Package apk extracts the OAuth client credentials, brand routing and
// mutual-TLS identity embedded in a connected-car application package.
package apk

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/jrsteele09/go-connectedcar/arsc"
	"github.com/jrsteele09/go-connectedcar/brands"
	"github.com/jrsteele09/go-connectedcar/certs"
	"github.com/jrsteele09/go-connectedcar/internal/config"
	"github.com/jrsteele09/go-connectedcar/internal/errors"
	"github.com/rs/zerolog/log"
)

var parametersPattern = regexp.MustCompile(`^res/raw-([a-z]{2})-r([A-Z]{2})/parameters\.json$`)

// Archive is an opened application package.
type Archive struct {
	zr        *zip.Reader
	closer    io.Closer
	cfg       config.PackageConfig
	extractor *certs.Extractor
	locales   map[string]string // locale -> entry path
}

// Option configures an Archive.
type Option func(*Archive)

// WithPackageConfig overrides where credentials are looked up in the package.
func WithPackageConfig(cfg config.PackageConfig) Option {
	return func(a *Archive) {
		a.cfg = cfg
	}
}

// WithExtractor overrides the certificate extractor. The default one accepts
// the legacy RC2 cipher the vendor containers use.
func WithExtractor(e *certs.Extractor) Option {
	return func(a *Archive) {
		a.extractor = e
	}
}

// Open opens the package file at path.
func Open(path string, options ...Option) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(errors.KindArchive, "apk.Open", err)
	}
	a := newArchive(&rc.Reader, options)
	a.closer = rc
	return a, nil
}

// NewArchive reads a package from r.
func NewArchive(r io.ReaderAt, size int64, options ...Option) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(errors.KindArchive, "apk.NewArchive", err)
	}
	return newArchive(zr, options), nil
}

func newArchive(zr *zip.Reader, options []Option) *Archive {
	a := &Archive{
		zr:        zr,
		cfg:       config.Package{},
		extractor: certs.NewExtractor(certs.WithLegacyCiphers()),
		locales:   make(map[string]string),
	}
	for _, opt := range options {
		opt(a)
	}
	for _, f := range zr.File {
		m := parametersPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		a.locales[m[1]+"-"+m[2]] = f.Name
	}
	log.Debug().Int("locales", len(a.locales)).Msg("Discovered parameter files")
	return a
}

// Close releases the file opened by Open.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Locales lists the locales that have a parameter file, sorted. Callers
// present these to the operator and pass the choice to Extract.
func (a *Archive) Locales() []string {
	locales := make([]string, 0, len(a.locales))
	for l := range a.locales {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	return locales
}

// Extract builds the credentials for locale. locale must be one of Locales.
func (a *Archive) Extract(locale string) (*Credentials, error) {
	const op = "apk.Extract"

	entry, ok := a.locales[locale]
	if !ok {
		return nil, errors.New(errors.KindSelection, op, "locale %q not among [%s]", locale, strings.Join(a.Locales(), ", "))
	}
	country := strings.SplitN(locale, "-", 2)[1]

	creds := &Credentials{Culture: locale}
	if err := a.readParameters(entry, creds); err != nil {
		return nil, err
	}
	if err := a.readResources(country, creds); err != nil {
		return nil, err
	}

	pfx, err := a.readEntry(a.cfg.GetCertificatePath())
	if err != nil {
		return nil, err
	}
	id, err := a.extractor.Extract(pfx, a.cfg.GetCertificatePassphrase())
	if err != nil {
		return nil, err
	}
	creds.CertificatePEM = id.CertificatePEM
	creds.PrivateKeyPEM = id.PrivateKeyPEM

	brand, ok := brands.Lookup(creds.PackageID)
	if !ok {
		return nil, errors.New(errors.KindBrandLookup, op, "unknown package %q", creds.PackageID)
	}
	creds.Realm = brand.Realm
	creds.OAuthURL = brand.OAuthURL

	log.Info().
		Str("package", creds.PackageID).
		Str("culture", creds.Culture).
		Str("site_code", creds.SiteCode).
		Str("certificate", id.Certificate.Subject.CommonName).
		Msg("Extracted package credentials")
	return creds, nil
}

func (a *Archive) readEntry(name string) ([]byte, error) {
	f, err := a.zr.Open(name)
	if err != nil {
		return nil, errors.Wrap(errors.KindArchive, "apk.readEntry", fmt.Errorf("%s: %w", name, err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(errors.KindArchive, "apk.readEntry", fmt.Errorf("%s: %w", name, err))
	}
	return data, nil
}

func (a *Archive) readParameters(entry string, creds *Credentials) error {
	const op = "apk.readParameters"
	data, err := a.readEntry(entry)
	if err != nil {
		return err
	}
	var p parameters
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.New(errors.KindFormat, op, "%s: %v", entry, err)
	}
	if p.ClientID == nil || p.Secret == nil {
		return errors.New(errors.KindFormat, op, "%s: cvsClientId and cvsSecret are required", entry)
	}
	creds.ClientID = *p.ClientID
	creds.ClientSecret = *p.Secret
	return nil
}

func (a *Archive) readResources(country string, creds *Credentials) error {
	const op = "apk.readResources"
	data, err := a.readEntry(a.cfg.GetResourceTablePath())
	if err != nil {
		return err
	}
	table, err := arsc.Parse(data)
	if err != nil {
		return err
	}
	pkg, ok := table.MainPackage()
	if !ok {
		return errors.New(errors.KindFormat, op, "resource table holds no package")
	}
	creds.PackageID = pkg.Name

	resolve := func(key string) (string, error) {
		v, ok := table.ResolveString(pkg.Name, key)
		if !ok {
			return "", errors.New(errors.KindFormat, op, "string %q missing from package %s", key, pkg.Name)
		}
		return v, nil
	}
	if creds.BrandIDHost, err = resolve(a.cfg.GetBrandIDHostResource()); err != nil {
		return err
	}
	if creds.APIHost, err = resolve(a.cfg.GetAPIHostResource()); err != nil {
		return err
	}
	template, err := resolve(a.cfg.GetSiteCodeResource())
	if err != nil {
		return err
	}

	creds.SiteCode, creds.BrandCode, err = siteCodes(template, a.cfg.GetDefaultCountry(), country)
	return err
}

// siteCodes substitutes country for the default country marker of template
// and derives the brand code from the unsubstituted template.
func siteCodes(template, defaultCountry, country string) (siteCode, brandCode string, err error) {
	const op = "apk.siteCodes"
	if len(template) < 2 {
		return "", "", errors.New(errors.KindFormat, op, "site code template %q too short", template)
	}
	siteCode = strings.ReplaceAll(template, "_"+defaultCountry+"_", "_"+country+"_")
	brandCode = template[:2]
	if siteCode[:2] != brandCode {
		return "", "", errors.New(errors.KindFormat, op, "country substitution changed brand code of %q", template)
	}
	return siteCode, brandCode, nil
}
