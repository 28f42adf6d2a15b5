package certs

import (
	"encoding/asn1"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidData                 = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	oidEncryptedData        = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 6}
	oidPKCS8ShroudedKeyBag  = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 12, 10, 1, 2}
	oidPBEWithSHA3KeyTDES   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 12, 1, 3}
	oidPBEWithSHA128BitRC2  = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 12, 1, 5}
	oidPBEWithSHA40BitRC2   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 12, 1, 6}
	oidPBES2                = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 13}
	explicitContent         = cbasn1.Tag(0).ContextSpecific().Constructed()
	errUnsupportedStructure = errors.New("unsupported PFX structure")
)

// cipherName is used in errors and logs.
func cipherName(oid asn1.ObjectIdentifier) string {
	switch {
	case oid.Equal(oidPBEWithSHA3KeyTDES):
		return "pbeWithSHAAnd3-KeyTripleDES-CBC"
	case oid.Equal(oidPBEWithSHA40BitRC2):
		return "pbeWithSHAAnd40BitRC2-CBC"
	case oid.Equal(oidPBEWithSHA128BitRC2):
		return "pbeWithSHAAnd128BitRC2-CBC"
	case oid.Equal(oidPBES2):
		return "PBES2"
	default:
		return oid.String()
	}
}

// containerCiphers walks a DER encoded PFX without decrypting anything and
// returns the encryption algorithm of every encrypted content and every
// shrouded key bag, in order of appearance.
func containerCiphers(der []byte) ([]asn1.ObjectIdentifier, error) {
	input := cryptobyte.String(der)
	var pfx cryptobyte.String
	var version int
	if !input.ReadASN1(&pfx, cbasn1.SEQUENCE) || !pfx.ReadASN1Integer(&version) {
		return nil, errors.New("not a DER encoded PFX")
	}
	if version != 3 {
		return nil, fmt.Errorf("PFX version %d", version)
	}

	contentType, content, err := readContentInfo(&pfx)
	if err != nil {
		return nil, fmt.Errorf("authSafe: %w", err)
	}
	if !contentType.Equal(oidData) {
		// public-key integrity mode
		return nil, fmt.Errorf("%w: authSafe content type %v", errUnsupportedStructure, contentType)
	}
	var authSafe, safes cryptobyte.String
	if !content.ReadASN1(&authSafe, cbasn1.OCTET_STRING) || !authSafe.ReadASN1(&safes, cbasn1.SEQUENCE) {
		return nil, errors.New("authSafe is not a sequence of ContentInfo")
	}

	var ciphers []asn1.ObjectIdentifier
	for !safes.Empty() {
		contentType, content, err := readContentInfo(&safes)
		if err != nil {
			return nil, err
		}
		switch {
		case contentType.Equal(oidEncryptedData):
			oid, err := encryptedDataCipher(content)
			if err != nil {
				return nil, err
			}
			ciphers = append(ciphers, oid)
		case contentType.Equal(oidData):
			oids, err := shroudedKeyCiphers(content)
			if err != nil {
				return nil, err
			}
			ciphers = append(ciphers, oids...)
		default:
			return nil, fmt.Errorf("%w: safe content type %v", errUnsupportedStructure, contentType)
		}
	}
	return ciphers, nil
}

func readContentInfo(s *cryptobyte.String) (asn1.ObjectIdentifier, cryptobyte.String, error) {
	var info, content cryptobyte.String
	var contentType asn1.ObjectIdentifier
	if !s.ReadASN1(&info, cbasn1.SEQUENCE) ||
		!info.ReadASN1ObjectIdentifier(&contentType) ||
		!info.ReadASN1(&content, explicitContent) {
		return nil, nil, errors.New("malformed ContentInfo")
	}
	return contentType, content, nil
}

// EncryptedData ::= SEQUENCE { version, EncryptedContentInfo }
// EncryptedContentInfo ::= SEQUENCE { contentType, contentEncryptionAlgorithm, [0] IMPLICIT encryptedContent }
func encryptedDataCipher(content cryptobyte.String) (asn1.ObjectIdentifier, error) {
	var data, info cryptobyte.String
	if !content.ReadASN1(&data, cbasn1.SEQUENCE) ||
		!data.SkipASN1(cbasn1.INTEGER) ||
		!data.ReadASN1(&info, cbasn1.SEQUENCE) ||
		!info.SkipASN1(cbasn1.OBJECT_IDENTIFIER) {
		return nil, errors.New("malformed EncryptedData")
	}
	return readAlgorithm(&info)
}

func shroudedKeyCiphers(content cryptobyte.String) ([]asn1.ObjectIdentifier, error) {
	var octets, bags cryptobyte.String
	if !content.ReadASN1(&octets, cbasn1.OCTET_STRING) || !octets.ReadASN1(&bags, cbasn1.SEQUENCE) {
		return nil, errors.New("malformed SafeContents")
	}
	var ciphers []asn1.ObjectIdentifier
	for !bags.Empty() {
		var bag, value cryptobyte.String
		var bagID asn1.ObjectIdentifier
		if !bags.ReadASN1(&bag, cbasn1.SEQUENCE) ||
			!bag.ReadASN1ObjectIdentifier(&bagID) ||
			!bag.ReadASN1(&value, explicitContent) {
			return nil, errors.New("malformed SafeBag")
		}
		if !bagID.Equal(oidPKCS8ShroudedKeyBag) {
			continue
		}
		var keyInfo cryptobyte.String
		if !value.ReadASN1(&keyInfo, cbasn1.SEQUENCE) {
			return nil, errors.New("malformed EncryptedPrivateKeyInfo")
		}
		oid, err := readAlgorithm(&keyInfo)
		if err != nil {
			return nil, err
		}
		ciphers = append(ciphers, oid)
	}
	return ciphers, nil
}

func readAlgorithm(s *cryptobyte.String) (asn1.ObjectIdentifier, error) {
	var alg cryptobyte.String
	var oid asn1.ObjectIdentifier
	if !s.ReadASN1(&alg, cbasn1.SEQUENCE) || !alg.ReadASN1ObjectIdentifier(&oid) {
		return nil, errors.New("malformed AlgorithmIdentifier")
	}
	return oid, nil
}
