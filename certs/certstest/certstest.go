// Package certstest carries PKCS#12 fixtures generated with OpenSSL 3.
//
//	openssl pkcs12 -export -legacy -in leaf.pem -inkey leaf.key -certfile ca.pem -name mwpmyma1 -out legacy.pfx
//	openssl pkcs12 -export -in leaf.pem -inkey leaf.key -name mwpmyma1 -out modern.pfx
package certstest

import _ "embed"

// Passphrase protects both fixtures.
const Passphrase = "y5Y2my5B"

// LeafCommonName is the subject CN of the client certificate in both fixtures.
const LeafCommonName = "MWPMYMA1"

// CACommonName is the subject CN of the issuing certificate bundled in LegacyPFX.
const CACommonName = "Test Vendor Root CA"

// LegacyPFX encrypts its certificate bag with pbeWithSHAAnd40BitRC2-CBC and its
// key bag with pbeWithSHAAnd3-KeyTripleDES-CBC, SHA-1 MAC. It holds the leaf
// certificate, its RSA key and the CA certificate.
//
//go:embed testdata/legacy.pfx
var LegacyPFX []byte

// ModernPFX uses PBES2/PBKDF2/AES-256-CBC with a SHA-256 MAC.
//
//go:embed testdata/modern.pfx
var ModernPFX []byte
