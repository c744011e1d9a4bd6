package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	config "github.com/maheshrc27/postpilot/configs"
	"golang.org/x/oauth2"
)

// Token is a long-lived Instagram access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

type UserInfo struct {
	UserID         string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture_url"`
}

// Authorizer is the OAuth connect flow. The mock variant is selected the
// same way as the mock client, through configuration at construction.
type Authorizer interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Token, error)
	Refresh(ctx context.Context, accessToken string) (*Token, error)
	UserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
}

func NewAuthorizer(cfg config.Config) Authorizer {
	if cfg.MockMode {
		return &MockAuthorizer{cfg: cfg}
	}
	return &GraphAuthorizer{
		cfg: cfg,
		conf: &oauth2.Config{
			ClientID:     cfg.InstagramClientID,
			ClientSecret: cfg.InstagramClientSecret,
			RedirectURL:  cfg.InstagramRedirectURI,
			Scopes: []string{
				"instagram_business_basic",
				"instagram_business_content_publish",
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://www.instagram.com/oauth/authorize",
				TokenURL: "https://api.instagram.com/oauth/access_token",
			},
		},
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type GraphAuthorizer struct {
	cfg  config.Config
	conf *oauth2.Config
	http *http.Client
}

func (a *GraphAuthorizer) AuthCodeURL(state string) string {
	return a.conf.AuthCodeURL(state)
}

// Exchange turns an authorization code into a long-lived token. The code
// exchange yields a short-lived token which is immediately upgraded; only
// the long-lived form is ever stored.
func (a *GraphAuthorizer) Exchange(ctx context.Context, code string) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.http)

	shortLived, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("instagram: code exchange failed: %w", err)
	}

	return a.exchangeLongLived(ctx, shortLived.AccessToken)
}

func (a *GraphAuthorizer) exchangeLongLived(ctx context.Context, shortLivedToken string) (*Token, error) {
	reqURL := fmt.Sprintf(
		"https://graph.instagram.com/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		a.cfg.InstagramClientSecret,
		shortLivedToken,
	)
	return a.fetchToken(ctx, reqURL, "long-lived token exchange")
}

// Refresh extends a long-lived token. Instagram refreshes with the access
// token itself, not a separate refresh token.
func (a *GraphAuthorizer) Refresh(ctx context.Context, accessToken string) (*Token, error) {
	reqURL := fmt.Sprintf(
		"https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		accessToken,
	)
	return a.fetchToken(ctx, reqURL, "token refresh")
}

func (a *GraphAuthorizer) fetchToken(ctx context.Context, reqURL, op string) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram: %s failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("instagram: %s returned status %d: %s", op, resp.StatusCode, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("instagram: decoding %s response: %w", op, err)
	}

	return &Token{
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}, nil
}

func (a *GraphAuthorizer) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	reqURL := fmt.Sprintf(
		"https://graph.instagram.com/me?fields=id,username,name,account_type,profile_picture_url&access_token=%s",
		accessToken,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram: fetching user info: %w", err)
	}
	defer resp.Body.Close()

	var userInfo UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("instagram: decoding user info: %w", err)
	}
	return &userInfo, nil
}

// MockAuthorizer fabricates a connected account without touching the
// platform, for demoing without live credentials.
type MockAuthorizer struct {
	cfg config.Config
}

func (a *MockAuthorizer) AuthCodeURL(state string) string {
	return fmt.Sprintf("%s?state=%s&code=mock-code", a.cfg.InstagramRedirectURI, state)
}

func (a *MockAuthorizer) Exchange(ctx context.Context, code string) (*Token, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: "mock-token-" + id,
		ExpiresAt:   time.Now().Add(60 * 24 * time.Hour),
	}, nil
}

func (a *MockAuthorizer) Refresh(ctx context.Context, accessToken string) (*Token, error) {
	return &Token{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(60 * 24 * time.Hour),
	}, nil
}

func (a *MockAuthorizer) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	return &UserInfo{
		UserID:         "mock-account-" + id,
		Username:       "demo_account",
		Name:           "Demo Account",
		ProfilePicture: "",
	}, nil
}
