package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/instagram"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type fakeSocialAccountRepo struct {
	account *models.SocialAccount
	err     error
}

func (f *fakeSocialAccountRepo) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeSocialAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return f.account, f.err
}

func (f *fakeSocialAccountRepo) GetByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	return f.account, f.err
}

func (f *fakeSocialAccountRepo) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeSocialAccountRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeSocialAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	return f.account != nil, nil
}

func (f *fakeSocialAccountRepo) SetToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	return nil
}

func (f *fakeSocialAccountRepo) SetConnected(ctx context.Context, id int64, connected bool) error {
	return nil
}

func (f *fakeSocialAccountRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakeClient struct {
	tokenValid bool

	createErr  error
	publishErr error

	permalink    string
	permalinkErr error

	createCalls  int
	publishCalls int
}

func (f *fakeClient) CreateMediaContainer(ctx context.Context, imageURL, caption string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return "container-1", nil
}

func (f *fakeClient) PublishMediaContainer(ctx context.Context, containerID string) (string, error) {
	f.publishCalls++
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return "post-1", nil
}

func (f *fakeClient) GetPermalink(ctx context.Context, mediaID string) (string, error) {
	return f.permalink, f.permalinkErr
}

func (f *fakeClient) ValidateToken(ctx context.Context) bool {
	return f.tokenValid
}

func connectedAccount(t *testing.T) *models.SocialAccount {
	t.Helper()
	encrypted, err := utils.Encrypt([]byte("graph-access-token"), []byte(testSecretKey))
	require.NoError(t, err)
	return &models.SocialAccount{
		ID:          7,
		UserID:      42,
		Platform:    models.PlatformInstagram,
		AccountID:   "17841400000000000",
		AccessToken: encrypted,
		Connected:   true,
	}
}

func newPostingFixture(repo *fakeSocialAccountRepo, client *fakeClient) (PostingService, *int) {
	cfg := config.Config{SecretKey: testSecretKey}
	factoryCalls := 0
	factory := func(cfg config.Config, accountID, accessToken string) instagram.Client {
		factoryCalls++
		return client
	}
	return NewPostingServiceWithFactory(cfg, repo, factory), &factoryCalls
}

func TestPostImageSuccess(t *testing.T) {
	client := &fakeClient{tokenValid: true, permalink: "https://www.instagram.com/p/post-1/"}
	svc, factoryCalls := newPostingFixture(&fakeSocialAccountRepo{account: connectedAccount(t)}, client)

	result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")

	require.True(t, result.Success)
	assert.Equal(t, "post-1", result.PostID)
	assert.Equal(t, "https://www.instagram.com/p/post-1/", result.Permalink)
	assert.False(t, result.RateLimited)
	assert.Equal(t, 1, *factoryCalls)
	assert.Equal(t, 1, client.createCalls)
	assert.Equal(t, 1, client.publishCalls)
}

func TestPostImageRejectsEmptyInput(t *testing.T) {
	client := &fakeClient{tokenValid: true}
	svc, factoryCalls := newPostingFixture(&fakeSocialAccountRepo{account: connectedAccount(t)}, client)

	result := svc.PostImage(context.Background(), 42, "", "hello")
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "image url")

	result = svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "")
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "caption")

	assert.Equal(t, 0, *factoryCalls)
}

func TestPostImageNoConnectedAccount(t *testing.T) {
	client := &fakeClient{tokenValid: true}

	for name, account := range map[string]*models.SocialAccount{
		"missing":      nil,
		"disconnected": {ID: 7, Connected: false},
	} {
		t.Run(name, func(t *testing.T) {
			svc, factoryCalls := newPostingFixture(&fakeSocialAccountRepo{account: account}, client)

			result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")

			require.False(t, result.Success)
			assert.Contains(t, result.Error, "no connected instagram account")
			assert.Equal(t, 0, *factoryCalls)
		})
	}
}

func TestPostImageRepositoryError(t *testing.T) {
	client := &fakeClient{tokenValid: true}
	svc, factoryCalls := newPostingFixture(&fakeSocialAccountRepo{err: errors.New("connection refused")}, client)

	result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "connection refused")
	assert.Equal(t, 0, *factoryCalls)
}

func TestPostImageUnreadableCredential(t *testing.T) {
	account := connectedAccount(t)
	account.AccessToken = "not-valid-ciphertext"
	client := &fakeClient{tokenValid: true}
	svc, factoryCalls := newPostingFixture(&fakeSocialAccountRepo{account: account}, client)

	result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "credential")
	assert.Equal(t, 0, *factoryCalls)
}

func TestPostImageInvalidToken(t *testing.T) {
	client := &fakeClient{tokenValid: false}
	svc, _ := newPostingFixture(&fakeSocialAccountRepo{account: connectedAccount(t)}, client)

	result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid or expired")
	assert.Equal(t, 0, client.createCalls)
	assert.Equal(t, 0, client.publishCalls)
}

func TestPostImageRateLimitedPropagates(t *testing.T) {
	client := &fakeClient{
		tokenValid: true,
		publishErr: &instagram.APIError{Code: 613, HTTPStatus: 400, Message: "Calls to this api have exceeded the rate limit"},
	}
	svc, _ := newPostingFixture(&fakeSocialAccountRepo{account: connectedAccount(t)}, client)

	result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")

	require.False(t, result.Success)
	assert.True(t, result.RateLimited)
	assert.Contains(t, result.Error, "publishing media container")
}

func TestPostImageCreateFailureNotRateLimited(t *testing.T) {
	client := &fakeClient{
		tokenValid: true,
		createErr:  &instagram.APIError{Code: 100, HTTPStatus: 400, Message: "Invalid parameter"},
	}
	svc, _ := newPostingFixture(&fakeSocialAccountRepo{account: connectedAccount(t)}, client)

	result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")

	require.False(t, result.Success)
	assert.False(t, result.RateLimited)
	assert.Contains(t, result.Error, "creating media container")
	assert.Equal(t, 0, client.publishCalls)
}

func TestPostImageReusesClientAcrossPublishes(t *testing.T) {
	client := &fakeClient{tokenValid: true}
	svc, factoryCalls := newPostingFixture(&fakeSocialAccountRepo{account: connectedAccount(t)}, client)

	for i := 0; i < 3; i++ {
		result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")
		require.True(t, result.Success)
	}

	// One client per account, so its request pacing spans publishes.
	assert.Equal(t, 1, *factoryCalls)
	assert.Equal(t, 3, client.createCalls)
}

func TestPostImageRebuildsClientOnTokenRotation(t *testing.T) {
	repo := &fakeSocialAccountRepo{account: connectedAccount(t)}
	client := &fakeClient{tokenValid: true}
	svc, factoryCalls := newPostingFixture(repo, client)

	result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")
	require.True(t, result.Success)
	assert.Equal(t, 1, *factoryCalls)

	rotated, err := utils.Encrypt([]byte("rotated-access-token"), []byte(testSecretKey))
	require.NoError(t, err)
	repo.account.AccessToken = rotated

	result = svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")
	require.True(t, result.Success)
	assert.Equal(t, 2, *factoryCalls)
}

func TestPostImagePermalinkFailureIsNonFatal(t *testing.T) {
	client := &fakeClient{tokenValid: true, permalinkErr: errors.New("permalink unavailable")}
	svc, _ := newPostingFixture(&fakeSocialAccountRepo{account: connectedAccount(t)}, client)

	result := svc.PostImage(context.Background(), 42, "https://example.com/image.jpg", "hello")

	require.True(t, result.Success)
	assert.Equal(t, "post-1", result.PostID)
	assert.Empty(t, result.Permalink)
}
