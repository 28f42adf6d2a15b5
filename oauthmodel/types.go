package oauthmodel

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// PasswordGrant exchanges the operator's email and password for tokens.
	// Used in: first login, or when no refresh token is cached
	// Token request includes: username, password, realm, scope
	// Returns: access_token, refresh_token, id_token
	PasswordGrant GrantType = "password"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Used in: every renewal after the first login
	// Token request includes: refresh_token, realm, scope
	// Returns: new access_token and usually a rotated refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// ReturnCodeOK is the returnCode of a successful legacy access token call.
const ReturnCodeOK = "OK"
