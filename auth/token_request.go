package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-connectedcar/internal/errors"
	"github.com/jrsteele09/go-connectedcar/internal/utils"
	"github.com/jrsteele09/go-connectedcar/oauthmodel"
	"github.com/jrsteele09/go-connectedcar/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const opToken = "auth.EnsureValidToken"

// EnsureValidToken returns the cached access token while it has not
// expired. Otherwise it requests a new one, preferring the refresh grant
// whenever a refresh token is cached. A failed refresh grant is not retried
// with the password grant.
func (s *Service) EnsureValidToken(ctx context.Context) (*oauth2.Token, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.nowTime()
	api := &s.state.API
	if api.AccessToken != "" && api.TokenExpires != nil && api.TokenExpires.After(now) {
		log.Debug().Time("expires", api.TokenExpires.Time).Msg("Access token still valid")
		return s.token(), nil
	}
	if !s.state.HasPackage() {
		return nil, errors.Wrapf(NoPackageErr, "[EnsureValidToken]")
	}

	request := oauthmodel.TokenRequest{
		Realm: api.Realm,
		Scope: s.cfg.GetOAuthScope(),
	}
	if api.RefreshToken != "" {
		request.GrantType = oauthmodel.RefreshTokenGrant
		request.RefreshToken = api.RefreshToken
	} else {
		request.GrantType = oauthmodel.PasswordGrant
		request.Username = api.Email
		request.Password = api.Password
	}

	resp, err := s.requestToken(ctx, request)
	if err != nil {
		return nil, err
	}

	api.AccessToken = utils.Value(resp.AccessToken)
	if refresh := utils.Value(resp.RefreshToken); refresh != "" {
		api.RefreshToken = refresh
	}
	api.TokenExpires = sessions.NewExpiry(now.Add(time.Duration(resp.ExpiresIn) * time.Second))
	log.Info().
		Str("grant_type", string(request.GrantType)).
		Time("expires", api.TokenExpires.Time).
		Stringer("access_token", oauthmodel.NewRedacted(api.AccessToken)).
		Msg("Access token issued")
	if resp.IdToken != nil {
		logIDToken(*resp.IdToken)
	}

	if err := s.repo.Save(s.state); err != nil {
		return nil, errors.Wrapf(err, "[EnsureValidToken] persist session")
	}
	return s.token(), nil
}

func (s *Service) requestToken(ctx context.Context, request oauthmodel.TokenRequest) (*oauthmodel.TokenResponse, error) {
	api := s.state.API
	form, err := request.Form()
	if err != nil {
		return nil, authErr(errors.ReasonTokenRequestFailed, opToken, 0, "%w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.OAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(errors.KindNetwork, opToken, err)
	}
	req.SetBasicAuth(api.ClientID, api.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Source-Agent", s.cfg.GetSourceAgent())
	req.Header.Set("Version", s.cfg.GetAppVersion())
	req.Header.Set("User-Agent", s.cfg.GetUserAgent())

	status, body, err := send(s.httpClient, opToken, req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		details := map[string]string{"status": strconv.Itoa(status)}
		var failure oauthmodel.ErrorResponse
		if json.Unmarshal(body, &failure) == nil && failure.Error != "" {
			details["error"] = failure.Error
			if failure.Description != "" {
				details["error_description"] = failure.Description
			}
		}
		return nil, errors.New(errors.KindAuthentication, opToken, "%s grant rejected", request.GrantType).
			WithReason(errors.ReasonTokenRequestFailed).
			WithDetails(details)
	}

	var resp oauthmodel.TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, authErr(errors.ReasonTokenRequestFailed, opToken, status, "decode response: %v", err)
	}
	if utils.Value(resp.AccessToken) == "" {
		return nil, authErr(errors.ReasonTokenRequestFailed, opToken, status, "response holds no access token")
	}
	return &resp, nil
}

func (s *Service) token() *oauth2.Token {
	api := s.state.API
	t := &oauth2.Token{
		AccessToken:  api.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: api.RefreshToken,
	}
	if api.TokenExpires != nil {
		t.Expiry = api.TokenExpires.Time
	}
	return t
}

// logIDToken logs the subject of the issued id token. The token is not
// verified; it is never used for authorization.
func logIDToken(raw string) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		log.Debug().Err(err).Msg("Unreadable id token")
		return
	}
	event := log.Debug().Str("subject", claims.Subject)
	if claims.ExpiresAt != nil {
		event = event.Time("expires", claims.ExpiresAt.Time)
	}
	event.Msg("ID token issued")
}
