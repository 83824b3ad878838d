// Package cipapi is a client for the clinical genomics case service. It offers raw
// accessors returning the server JSON untouched, typed projections of those payloads,
// and the Case aggregate whose reports are migrated to the canonical schema.
package cipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cipapi-client/pkg/reports"
	"github.com/cipapi-client/pkg/rest"
)

// Endpoints relative to the service root
const (
	EndpointBase         = "api/2"
	AuthEndpoint         = EndpointBase + "/get-token/"
	IREndpoint           = EndpointBase + "/interpretation-request"
	EQEndpoint           = EndpointBase + "/exit-questionnaire"
	CREndpoint           = EndpointBase + "/clinical-report"
	IGEndpoint           = EndpointBase + "/interpreted-genome"
	ReferralEndpoint     = EndpointBase + "/referral"
	FileEndpoint         = EndpointBase + "/file"
	ParticipantsEndpoint = EndpointBase + "/participants"
)

// PageSizeMax is the largest page the list endpoints serve
const PageSizeMax = 500

// tokenScheme prefixes every token in the Authorization header
const tokenScheme = "JWT "

// Config represents configuration for the CIPAPI client
type Config struct {
	rest.Config
	// Token is used as is until the server refuses it
	Token string `json:"-"`
	// User and Password allow fetching and renewing tokens
	User     string `json:"user"`
	Password string `json:"-"`
	// PageSize is sent as page_size on list calls when set
	PageSize int `json:"page_size"`
}

// Client talks to the CIPAPI
type Client struct {
	rest     *rest.Client
	registry *reports.Registry
	logger   *logrus.Logger
	pageSize int
}

// NewClient creates a client. Either a token or a user is required; without a user
// a refused token cannot be renewed.
func NewClient(config Config, logger *logrus.Logger) (*Client, error) {
	if config.Token == "" && config.User == "" {
		return nil, fmt.Errorf("authentication is required: provide either a token or a user and password")
	}

	var auth rest.Authenticator
	if config.User != "" {
		auth = &passwordAuthenticator{user: config.User, password: config.Password}
	}

	restClient, err := rest.NewClient(config.Config, auth, logger)
	if err != nil {
		return nil, err
	}
	if config.Token != "" {
		restClient.SetAuthorization(tokenScheme + config.Token)
	}

	pageSize := config.PageSize
	if pageSize > PageSizeMax {
		pageSize = PageSizeMax
	}

	return &Client{
		rest:     restClient,
		registry: reports.NewRegistry(),
		logger:   restClient.Logger(),
		pageSize: pageSize,
	}, nil
}

// REST exposes the underlying transport
func (c *Client) REST() *rest.Client {
	return c.rest
}

// Registry returns the migration registry used to build cases
func (c *Client) Registry() *reports.Registry {
	return c.registry
}

// passwordAuthenticator exchanges user credentials for a token
type passwordAuthenticator struct {
	user     string
	password string
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Authenticate implements rest.Authenticator
func (a *passwordAuthenticator) Authenticate(ctx context.Context, c *rest.Client) (string, error) {
	endpoint, err := rest.BuildURL(c.BaseURL(), AuthEndpoint)
	if err != nil {
		return "", err
	}
	raw, err := c.Do(ctx, &rest.Request{
		Method:   http.MethodPost,
		URL:      endpoint,
		Body:     map[string]string{"username": a.user, "password": a.password},
		SkipAuth: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to obtain token: %w", err)
	}

	var resp tokenResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("token response has no token")
	}
	return tokenScheme + resp.Token, nil
}
