package driver

import (
	"strings"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/utils"
)

const (
	defaultBaseURL           = "https://api.hubapi.com"
	defaultTokenURL          = "https://api.hubapi.com/oauth/v1/token"
	defaultPageSize          = 100
	defaultRequestsPerSecond = 10 // HubSpot allows 100 requests per 10 seconds
)

// Config holds HubSpot connection configuration. Either a private app
// access token or the OAuth client credentials with a refresh token are required.
type Config struct {
	AccessToken  string `json:"access_token,omitempty" jsonschema:"title=Private app access token" validate:"required_without=ClientID"`
	ClientID     string `json:"client_id,omitempty" jsonschema:"title=OAuth client ID"`
	ClientSecret string `json:"client_secret,omitempty" jsonschema:"title=OAuth client secret" validate:"required_with=ClientID"`
	RefreshToken string `json:"refresh_token,omitempty" jsonschema:"title=OAuth refresh token" validate:"required_with=ClientID"`

	BaseURL  string `json:"base_url,omitempty" jsonschema:"default=https://api.hubapi.com" validate:"omitempty,url"`
	TokenURL string `json:"token_url,omitempty" jsonschema:"default=https://api.hubapi.com/oauth/v1/token" validate:"omitempty,url"`

	PageSize          int     `json:"page_size,omitempty" jsonschema:"default=100,maximum=100" validate:"gte=0,lte=100"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" jsonschema:"default=10" validate:"gte=0"`
	RetryCount        int     `json:"retry_count,omitempty" jsonschema:"default=3" validate:"gte=0"`
}

func (c *Config) Validate() error {
	if err := utils.Validate(c); err != nil {
		return err
	}

	c.BaseURL = strings.TrimSuffix(utils.Ternary(c.BaseURL == "", defaultBaseURL, c.BaseURL).(string), "/")
	c.TokenURL = utils.Ternary(c.TokenURL == "", defaultTokenURL, c.TokenURL).(string)
	c.PageSize = utils.Ternary(c.PageSize == 0, defaultPageSize, c.PageSize).(int)
	c.RequestsPerSecond = utils.Ternary(c.RequestsPerSecond == 0, float64(defaultRequestsPerSecond), c.RequestsPerSecond).(float64)
	c.RetryCount = utils.Ternary(c.RetryCount == 0, constants.DefaultRetryCount, c.RetryCount).(int)
	return nil
}

func (c *Config) usesOAuth() bool {
	return c.AccessToken == "" && c.ClientID != ""
}
