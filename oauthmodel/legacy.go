package oauthmodel

// Value wraps a single field of a legacy jsonRequest.
type Value struct {
	Value string `json:"value"`
}

// AccessTokenRequest is the jsonRequest query parameter of the legacy
// GetAccessToken call.
type AccessTokenRequest struct {
	SiteCode string           `json:"siteCode"`
	Culture  string           `json:"culture"`
	Action   string           `json:"action"`
	Fields   map[string]Value `json:"fields"`
}

// NewAccessTokenRequest builds a legacy login request for the operator.
func NewAccessTokenRequest(siteCode, culture, email, password string) AccessTokenRequest {
	return AccessTokenRequest{
		SiteCode: siteCode,
		Culture:  culture,
		Action:   "authenticate",
		Fields: map[string]Value{
			"USR_EMAIL":    {Value: email},
			"USR_PASSWORD": {Value: password},
		},
	}
}

// AccessTokenResponse is the legacy GetAccessToken response. AccessToken is
// the ticket passed to the user lookup.
type AccessTokenResponse struct {
	ReturnCode  string `json:"returnCode"`
	AccessToken string `json:"accessToken"`
}

// UserRequest is the body of the user lookup.
type UserRequest struct {
	SiteCode string `json:"site_code"`
	Ticket   string `json:"ticket"`
}

// UserResponse is the user lookup response. Errors is set instead of Success
// when the lookup is rejected.
type UserResponse struct {
	Errors  map[string]string `json:"errors,omitempty"`
	Success *UserSuccess      `json:"success,omitempty"`
}

type UserSuccess struct {
	ID       string      `json:"id"`
	Language string      `json:"language,omitempty"`
	Country  string      `json:"country,omitempty"`
	Profile  UserProfile `json:"profile"`
}

type UserProfile struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
