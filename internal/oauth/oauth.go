// Package oauth holds the provider-specific handshake adapters. They run
// the authorization-code exchange and normalize the provider's user payload
// into an identity.Profile; nothing provider-shaped leaks past this
// package.
package oauth

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/internal/config"
	identityUC "github.com/planhub/backend/usecase/identity"
)

const requestTimeout = 10 * time.Second

type provider struct {
	name         string
	clientID     string
	clientSecret string
	redirectURL  string
	authorizeURL string
	tokenURL     string
	userURL      string
	emailsURL    string
	scope        string
}

// Client dispatches handshake calls to the configured providers.
type Client struct {
	providers map[string]*provider
	http      *fasthttp.Client
	logger    *zap.Logger
}

func NewClient(cfg config.OAuthConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		providers: make(map[string]*provider),
		http:      &fasthttp.Client{Name: "planhub-oauth"},
		logger:    logger,
	}

	if cfg.GitHub.Enabled() {
		c.providers["github"] = &provider{
			name:         "github",
			clientID:     cfg.GitHub.ClientID,
			clientSecret: cfg.GitHub.ClientSecret,
			redirectURL:  cfg.GitHub.RedirectURL,
			authorizeURL: "https://github.com/login/oauth/authorize",
			tokenURL:     "https://github.com/login/oauth/access_token",
			userURL:      "https://api.github.com/user",
			emailsURL:    "https://api.github.com/user/emails",
			scope:        "user:email",
		}
	}
	if cfg.GitLab.Enabled() {
		base := cfg.GitLab.BaseURL
		c.providers["gitlab"] = &provider{
			name:         "gitlab",
			clientID:     cfg.GitLab.ClientID,
			clientSecret: cfg.GitLab.ClientSecret,
			redirectURL:  cfg.GitLab.RedirectURL,
			authorizeURL: base + "/oauth/authorize",
			tokenURL:     base + "/oauth/token",
			userURL:      base + "/api/v4/user",
			scope:        "read_user",
		}
	}
	return c
}

// AuthorizeURL builds the provider's consent-screen URL.
func (c *Client) AuthorizeURL(name, state string) (string, error) {
	p, ok := c.providers[name]
	if !ok {
		return "", domain.WrapError(domain.ErrCodeNotFound, fmt.Sprintf("unknown auth provider %q", name), nil)
	}

	q := url.Values{}
	q.Set("client_id", p.clientID)
	q.Set("redirect_uri", p.redirectURL)
	q.Set("response_type", "code")
	q.Set("scope", p.scope)
	q.Set("state", state)
	return p.authorizeURL + "?" + q.Encode(), nil
}

// Exchange trades an authorization code for the provider's user profile.
func (c *Client) Exchange(name, code string) (identityUC.Profile, error) {
	p, ok := c.providers[name]
	if !ok {
		return identityUC.Profile{}, domain.WrapError(domain.ErrCodeNotFound, fmt.Sprintf("unknown auth provider %q", name), nil)
	}
	if code == "" {
		return identityUC.Profile{}, domain.WrapError(domain.ErrCodeInvalid, "missing authorization code", nil)
	}

	accessToken, err := c.exchangeCode(p, code)
	if err != nil {
		return identityUC.Profile{}, err
	}
	return c.fetchProfile(p, accessToken)
}

func (c *Client) exchangeCode(p *provider, code string) (string, error) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("client_id", p.clientID)
	args.Set("client_secret", p.clientSecret)
	args.Set("code", code)
	args.Set("grant_type", "authorization_code")
	args.Set("redirect_uri", p.redirectURL)

	body, err := c.do(fasthttp.MethodPost, p.tokenURL, "", args)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeUnauthorized, fmt.Sprintf("%s code exchange failed", p.name), err)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, fmt.Sprintf("decode %s token response", p.name), err)
	}
	if payload.AccessToken == "" {
		return "", domain.WrapError(domain.ErrCodeUnauthorized, fmt.Sprintf("%s rejected authorization code", p.name), fmt.Errorf("%s", payload.Error))
	}
	return payload.AccessToken, nil
}

func (c *Client) fetchProfile(p *provider, accessToken string) (identityUC.Profile, error) {
	body, err := c.do(fasthttp.MethodGet, p.userURL, accessToken, nil)
	if err != nil {
		return identityUC.Profile{}, domain.WrapError(domain.ErrCodeUnauthorized, fmt.Sprintf("fetch %s profile", p.name), err)
	}

	var payload struct {
		ID       int64  `json:"id"`
		Login    string `json:"login"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return identityUC.Profile{}, domain.WrapError(domain.ErrCodeInternal, fmt.Sprintf("decode %s profile", p.name), err)
	}

	username := payload.Login
	if username == "" {
		username = payload.Username
	}
	profile := identityUC.Profile{
		Provider:    p.name,
		ProviderID:  strconv.FormatInt(payload.ID, 10),
		Username:    username,
		DisplayName: payload.Name,
		Email:       payload.Email,
	}

	// GitHub hides the email unless public; the emails endpoint carries the
	// primary one.
	if profile.Email == "" && p.emailsURL != "" {
		email, err := c.fetchPrimaryEmail(p, accessToken)
		if err != nil {
			return identityUC.Profile{}, err
		}
		profile.Email = email
	}
	return profile, nil
}

func (c *Client) fetchPrimaryEmail(p *provider, accessToken string) (string, error) {
	body, err := c.do(fasthttp.MethodGet, p.emailsURL, accessToken, nil)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeUnauthorized, fmt.Sprintf("fetch %s emails", p.name), err)
	}

	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, fmt.Sprintf("decode %s emails", p.name), err)
	}
	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("%s profile carries no email", p.name), nil)
}

func (c *Client) do(method, uri, bearer string, form *fasthttp.Args) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if form != nil {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBody(form.QueryString())
	}

	if err := c.http.DoTimeout(req, resp, requestTimeout); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", uri, resp.StatusCode())
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
