package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
)

// Client publishes a single image to one Instagram account. Publishing is
// two-phase: a media container is created server-side, then published once
// the platform has finished processing it. A container id never outlives
// one publish attempt.
type Client interface {
	CreateMediaContainer(ctx context.Context, imageURL, caption string) (string, error)
	PublishMediaContainer(ctx context.Context, containerID string) (string, error)
	GetPermalink(ctx context.Context, mediaID string) (string, error)
	ValidateToken(ctx context.Context) bool
}

// NewClient returns the Graph API client, or the simulated one when mock
// mode is configured.
func NewClient(cfg config.Config, accountID, accessToken string) Client {
	if cfg.MockMode {
		return NewMockClient(cfg.MockDelay)
	}
	return NewGraphClient(cfg, accountID, accessToken)
}

type GraphClient struct {
	http        *http.Client
	baseURL     string
	accountID   string
	accessToken string
	pacer       *pacer

	maxAttempts    int
	retryBaseDelay time.Duration
	rateLimitDelay time.Duration
	settleDelay    time.Duration
}

func NewGraphClient(cfg config.Config, accountID, accessToken string) *GraphClient {
	return &GraphClient{
		http:           &http.Client{Timeout: 30 * time.Second},
		baseURL:        strings.TrimRight(cfg.GraphBaseURL, "/"),
		accountID:      accountID,
		accessToken:    accessToken,
		pacer:          newPacer(cfg.MinRequestInterval, cfg.RequestsPerMinute),
		maxAttempts:    cfg.MaxAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
		rateLimitDelay: cfg.RateLimitDelay,
		settleDelay:    cfg.SettleDelay,
	}
}

// CreateMediaContainer checks the image is actually fetchable, then asks
// the platform to stage it. The returned container id feeds the publish
// phase.
func (c *GraphClient) CreateMediaContainer(ctx context.Context, imageURL, caption string) (string, error) {
	if err := c.checkImageURL(ctx, imageURL); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("image_url", imageURL)
	params.Set("caption", caption)
	params.Set("access_token", c.accessToken)

	var result struct {
		ID string `json:"id"`
	}
	err := c.doWithRetry(ctx, func() error {
		return c.callOnce(ctx, http.MethodPost, "/"+c.accountID+"/media", params, &result)
	})
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", ErrMissingContainerID
	}
	return result.ID, nil
}

// PublishMediaContainer waits out the settle delay the platform needs to
// finish processing the container, then publishes it.
func (c *GraphClient) PublishMediaContainer(ctx context.Context, containerID string) (string, error) {
	if err := sleepContext(ctx, c.settleDelay); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("creation_id", containerID)
	params.Set("access_token", c.accessToken)

	var result struct {
		ID string `json:"id"`
	}
	err := c.doWithRetry(ctx, func() error {
		return c.callOnce(ctx, http.MethodPost, "/"+c.accountID+"/media_publish", params, &result)
	})
	if err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", ErrMissingPostID
	}
	return result.ID, nil
}

// GetPermalink fetches the public URL of a published post. Callers treat
// failure as non-fatal; an empty permalink is acceptable.
func (c *GraphClient) GetPermalink(ctx context.Context, mediaID string) (string, error) {
	params := url.Values{}
	params.Set("fields", "permalink")
	params.Set("access_token", c.accessToken)

	var result struct {
		Permalink string `json:"permalink"`
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return "", err
	}
	if err := c.callOnce(ctx, http.MethodGet, "/"+mediaID, params, &result); err != nil {
		return "", err
	}
	return result.Permalink, nil
}

// ValidateToken introspects the stored token. False means the credential
// is stale and the caller must not attempt to publish; it is never an
// error, so a flaky introspection endpoint reads as "cannot post".
func (c *GraphClient) ValidateToken(ctx context.Context) bool {
	params := url.Values{}
	params.Set("input_token", c.accessToken)
	params.Set("access_token", c.accessToken)

	var result struct {
		Data struct {
			IsValid   bool  `json:"is_valid"`
			ExpiresAt int64 `json:"expires_at"`
		} `json:"data"`
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return false
	}
	if err := c.callOnce(ctx, http.MethodGet, "/debug_token", params, &result); err != nil {
		slog.Info("token introspection failed", "error", err.Error())
		return false
	}
	if !result.Data.IsValid {
		return false
	}
	if result.Data.ExpiresAt != 0 && time.Unix(result.Data.ExpiresAt, 0).Before(time.Now()) {
		return false
	}
	return true
}

// checkImageURL HEADs the image before submitting it; the platform fails
// container creation on unreachable or non-image URLs anyway, this just
// fails faster and without burning a rate-limited request. The request
// goes to the image host, not the Graph API, so it is not paced.
func (c *GraphClient) checkImageURL(ctx context.Context, imageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return fmt.Errorf("instagram: invalid image url: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("instagram: image url unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("instagram: image url returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("instagram: image url has content type %q, want image/*", ct)
	}
	return nil
}

func (c *GraphClient) callOnce(ctx context.Context, method, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("instagram: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("instagram: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("instagram: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("instagram: parsing response: %w", err)
		}
	}
	return nil
}

func parseAPIError(resp *http.Response, body []byte) error {
	apiErr := &APIError{
		HTTPStatus: resp.StatusCode,
		Raw:        string(body),
	}

	var payload struct {
		Error struct {
			Message      string `json:"message"`
			Type         string `json:"type"`
			Code         int    `json:"code"`
			ErrorSubcode int    `json:"error_subcode"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Error.Code
		apiErr.Subcode = payload.Error.ErrorSubcode
		apiErr.Type = payload.Error.Type
		apiErr.Message = payload.Error.Message
	}

	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}

	return apiErr
}
