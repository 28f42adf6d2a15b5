// Package certs turns the password protected PKCS#12 container shipped inside
// the application package into a PEM certificate and a PKCS#8 PEM key usable
// as a mutual-TLS client identity.
//
// The vendor containers protect their certificate bag with the 40-bit RC2
// PBE scheme. Decrypting them requires an explicit opt-in via
// WithLegacyCiphers; the scheme is accepted for reading only.
package certs

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	stderrors "errors"
	"fmt"

	"github.com/jrsteele09/go-connectedcar/internal/errors"
	"golang.org/x/crypto/pkcs12"
)

const (
	certificateBlockType = "CERTIFICATE"
	privateKeyBlockType  = "PRIVATE KEY"
	op                   = "certs.Extract"
)

// Identity is a decrypted client identity.
type Identity struct {
	CertificatePEM string // leaf certificate only
	PrivateKeyPEM  string // PKCS#8
	Certificate    *x509.Certificate
	Chain          []*x509.Certificate // remaining certificates of the container
}

// TLSCertificate builds the tls.Certificate for a mutual-TLS client.
func (id *Identity) TLSCertificate() (tls.Certificate, error) {
	return tls.X509KeyPair([]byte(id.CertificatePEM), []byte(id.PrivateKeyPEM))
}

// Extractor decrypts PKCS#12 containers.
type Extractor struct {
	allowLegacy bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLegacyCiphers enables decryption of content protected with
// pbeWithSHAAnd40BitRC2-CBC. The cipher offers no meaningful protection and
// is only accepted so existing vendor containers can be read.
func WithLegacyCiphers() Option {
	return func(e *Extractor) {
		e.allowLegacy = true
	}
}

// NewExtractor creates an Extractor. Without options only
// pbeWithSHAAnd3-KeyTripleDES-CBC protected containers are accepted.
func NewExtractor(options ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func cryptoErr(reason errors.Reason, format string, args ...interface{}) error {
	return errors.New(errors.KindCrypto, op, format, args...).WithReason(reason)
}

// Extract decrypts container with passphrase. Any failure is a crypto error
// and never yields partial output.
func (e *Extractor) Extract(container []byte, passphrase string) (*Identity, error) {
	ciphers, err := containerCiphers(container)
	if err != nil {
		if stderrors.Is(err, errUnsupportedStructure) {
			return nil, cryptoErr(errors.ReasonUnsupportedCipher, "%v", err)
		}
		return nil, cryptoErr(errors.ReasonMalformedContainer, "%v", err)
	}
	if err := e.checkCiphers(ciphers); err != nil {
		return nil, err
	}

	blocks, err := pkcs12.ToPEM(container, passphrase)
	if err != nil {
		return nil, classify(err)
	}

	var certs []*x509.Certificate
	var key crypto.Signer
	for _, b := range blocks {
		switch b.Type {
		case certificateBlockType:
			cert, err := x509.ParseCertificate(b.Bytes)
			if err != nil {
				return nil, cryptoErr(errors.ReasonMalformedContainer, "parse certificate: %v", err)
			}
			certs = append(certs, cert)
		case privateKeyBlockType:
			if key != nil {
				return nil, cryptoErr(errors.ReasonMalformedContainer, "container holds more than one private key")
			}
			if key, err = parsePrivateKey(b.Bytes); err != nil {
				return nil, cryptoErr(errors.ReasonMalformedContainer, "parse private key: %v", err)
			}
		}
	}
	if key == nil {
		return nil, cryptoErr(errors.ReasonMalformedContainer, "container holds no private key")
	}

	leaf, chain, err := splitLeaf(certs, key.Public())
	if err != nil {
		return nil, err
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, cryptoErr(errors.ReasonMalformedContainer, "encode PKCS#8 key: %v", err)
	}

	return &Identity{
		CertificatePEM: string(pem.EncodeToMemory(&pem.Block{Type: certificateBlockType, Bytes: leaf.Raw})),
		PrivateKeyPEM:  string(pem.EncodeToMemory(&pem.Block{Type: privateKeyBlockType, Bytes: pkcs8})),
		Certificate:    leaf,
		Chain:          chain,
	}, nil
}

func (e *Extractor) checkCiphers(ciphers []asn1.ObjectIdentifier) error {
	for _, oid := range ciphers {
		switch {
		case oid.Equal(oidPBEWithSHA3KeyTDES):
		case oid.Equal(oidPBEWithSHA40BitRC2):
			if !e.allowLegacy {
				return cryptoErr(errors.ReasonUnsupportedCipher, "%s requires legacy ciphers to be enabled", cipherName(oid))
			}
		default:
			return cryptoErr(errors.ReasonUnsupportedCipher, "%s is not supported", cipherName(oid))
		}
	}
	return nil
}

func classify(err error) error {
	var notImplemented pkcs12.NotImplementedError
	switch {
	case stderrors.Is(err, pkcs12.ErrIncorrectPassword), stderrors.Is(err, pkcs12.ErrDecryption):
		return cryptoErr(errors.ReasonWrongPassphrase, "%v", err)
	case stderrors.As(err, &notImplemented):
		return cryptoErr(errors.ReasonUnsupportedCipher, "%v", err)
	default:
		return cryptoErr(errors.ReasonMalformedContainer, "%v", err)
	}
}

// parsePrivateKey accepts the PKCS#1 and SEC 1 encodings pkcs12.ToPEM emits
// as well as PKCS#8.
func parsePrivateKey(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
	return signer, nil
}

type publicKeyEqual interface {
	Equal(crypto.PublicKey) bool
}

// splitLeaf returns the certificate matching pub and the remaining ones.
func splitLeaf(certs []*x509.Certificate, pub crypto.PublicKey) (*x509.Certificate, []*x509.Certificate, error) {
	if len(certs) == 0 {
		return nil, nil, cryptoErr(errors.ReasonMalformedContainer, "container holds no certificate")
	}
	p, ok := pub.(publicKeyEqual)
	if !ok {
		return nil, nil, cryptoErr(errors.ReasonMalformedContainer, "unsupported public key type %T", pub)
	}
	for i, c := range certs {
		if p.Equal(c.PublicKey) {
			chain := make([]*x509.Certificate, 0, len(certs)-1)
			chain = append(chain, certs[:i]...)
			chain = append(chain, certs[i+1:]...)
			return c, chain, nil
		}
	}
	return nil, nil, cryptoErr(errors.ReasonMalformedContainer, "no certificate matches the private key")
}
