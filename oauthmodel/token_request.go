package oauthmodel

import (
	"fmt"
	"net/url"
)

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the form body sent to the brand token endpoint.
// The client credentials travel in the Basic authorization header, not here.
type TokenRequest struct {
	// GrantType selects which credentials are sent.
	// Required: Yes
	// Example: "refresh_token"
	GrantType GrantType

	// Realm is the identity realm of the brand.
	// Required: Yes
	// Example: "clientsB2CPeugeot"
	Realm string

	// Username is the operator's email address.
	// Required: Yes (only for password grant)
	Username string

	// Password is the operator's password.
	// Required: Yes (only for password grant)
	// Security: Never log or expose this value
	Password string

	// RefreshToken is the cached refresh token.
	// Required: Yes (only for refresh_token grant)
	RefreshToken string

	// Scope is the space separated scope list.
	// Example: "profile openid"
	Scope string
}

// Form encodes the request as an application/x-www-form-urlencoded body.
func (r TokenRequest) Form() (url.Values, error) {
	form := url.Values{}
	form.Set("realm", r.Realm)
	form.Set("grant_type", string(r.GrantType))
	switch r.GrantType {
	case PasswordGrant:
		if r.Username == "" || r.Password == "" {
			return nil, fmt.Errorf("%w: password grant needs username and password", ErrMissingCredentials)
		}
		form.Set("username", r.Username)
		form.Set("password", r.Password)
	case RefreshTokenGrant:
		if r.RefreshToken == "" {
			return nil, fmt.Errorf("%w: refresh grant needs a refresh token", ErrMissingCredentials)
		}
		form.Set("refresh_token", r.RefreshToken)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGrantType, r.GrantType)
	}
	if r.Scope != "" {
		form.Set("scope", r.Scope)
	}
	return form, nil
}
