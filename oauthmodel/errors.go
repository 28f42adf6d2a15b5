package oauthmodel

import "errors"

var (
	ErrMissingCredentials = errors.New("missing grant credentials")
	ErrUnknownGrantType   = errors.New("unsupported grant type")
)
