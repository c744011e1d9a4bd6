package job

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type fakePostRepo struct {
	due      []*models.Post
	listErr  error
	claimed  map[int64]bool
	claimErr error

	posted   []int64
	postedID string
	postedAt map[int64]time.Time
	status   map[int64]string
	failed   []int64
	failMsg  string
	released []int64

	listLimit int
}

func newFakePostRepo(due ...*models.Post) *fakePostRepo {
	claimed := make(map[int64]bool)
	for _, p := range due {
		claimed[p.ID] = true
	}
	return &fakePostRepo{
		due:      due,
		claimed:  claimed,
		postedAt: make(map[int64]time.Time),
		status:   make(map[int64]string),
	}
}

func (f *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	for _, p := range f.due {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}

func (f *fakePostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	f.listLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due, nil
}

func (f *fakePostRepo) ClaimForProcessing(ctx context.Context, id int64) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if !f.claimed[id] {
		return false, nil
	}
	f.claimed[id] = false
	return true, nil
}

// MarkPosted mirrors the repository contract: posted_at is written once,
// repeat calls with the same arguments change nothing else.
func (f *fakePostRepo) MarkPosted(ctx context.Context, id int64, instagramPostID, permalink string) error {
	f.posted = append(f.posted, id)
	f.postedID = instagramPostID
	if _, ok := f.postedAt[id]; !ok {
		f.postedAt[id] = time.Now()
	}
	f.status[id] = models.PostStatusPosted
	return nil
}

func (f *fakePostRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	f.failed = append(f.failed, id)
	f.failMsg = errorMessage
	return nil
}

func (f *fakePostRepo) Release(ctx context.Context, id int64) error {
	f.released = append(f.released, id)
	return nil
}

func (f *fakePostRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakeHistoryRepo struct {
	rows []*models.PostingHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	f.rows = append(f.rows, ph)
	return int64(len(f.rows)), nil
}

func (f *fakeHistoryRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	return f.rows, nil
}

func (f *fakeHistoryRepo) GetByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error) {
	return f.rows, nil
}

type fakeAccountRepo struct {
	account *models.SocialAccount
}

func (f *fakeAccountRepo) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return f.account, nil
}

func (f *fakeAccountRepo) GetByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	return f.account, nil
}

func (f *fakeAccountRepo) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeAccountRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	return false, nil
}

func (f *fakeAccountRepo) SetToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	return nil
}

func (f *fakeAccountRepo) SetConnected(ctx context.Context, id int64, connected bool) error {
	return nil
}

func (f *fakeAccountRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakePostingService struct {
	results map[int64]*transfer.PostResult
	calls   []int64
}

func (f *fakePostingService) PostImage(ctx context.Context, userID int64, imageURL, caption string) *transfer.PostResult {
	f.calls = append(f.calls, userID)
	if r, ok := f.results[userID]; ok {
		return r
	}
	return &transfer.PostResult{Success: true, PostID: "post-1"}
}

func duePost(id, userID int64) *models.Post {
	return &models.Post{
		ID:            id,
		UserID:        userID,
		Caption:       "caption",
		MediaURL:      "https://example.com/image.jpg",
		ScheduledTime: time.Now().Add(-time.Minute),
		Status:        models.PostStatusScheduled,
	}
}

func newJobFixture(pr *fakePostRepo, ps *fakePostingService) (*PublishJob, *fakeHistoryRepo) {
	cfg := config.Config{SweepBatchSize: 10}
	ph := &fakeHistoryRepo{}
	sa := &fakeAccountRepo{account: &models.SocialAccount{ID: 7, Connected: true}}
	return NewPublishJob(cfg, pr, ph, sa, ps), ph
}

func TestPublishOneSuccess(t *testing.T) {
	pr := newFakePostRepo(duePost(1, 42))
	ps := &fakePostingService{results: map[int64]*transfer.PostResult{
		42: {Success: true, PostID: "ig-123", Permalink: "https://www.instagram.com/p/ig-123/"},
	}}
	j, ph := newJobFixture(pr, ps)

	j.PublishOne(context.Background(), pr.due[0])

	assert.Equal(t, []int64{1}, pr.posted)
	assert.Equal(t, "ig-123", pr.postedID)
	assert.Empty(t, pr.failed)
	assert.Empty(t, pr.released)

	require.Len(t, ph.rows, 1)
	assert.True(t, ph.rows[0].Success)
	assert.Equal(t, int64(1), ph.rows[0].PostID)
	assert.Equal(t, int64(7), ph.rows[0].AccountID)
	assert.Equal(t, "ig-123", ph.rows[0].InstagramPostID)
}

func TestPublishOneSkipsUnclaimedPost(t *testing.T) {
	post := duePost(1, 42)
	pr := newFakePostRepo(post)
	pr.claimed[post.ID] = false
	ps := &fakePostingService{}
	j, ph := newJobFixture(pr, ps)

	j.PublishOne(context.Background(), post)

	assert.Empty(t, ps.calls)
	assert.Empty(t, pr.posted)
	assert.Empty(t, pr.failed)
	assert.Empty(t, ph.rows)
}

func TestPublishOneRateLimitedReleasesClaim(t *testing.T) {
	pr := newFakePostRepo(duePost(1, 42))
	ps := &fakePostingService{results: map[int64]*transfer.PostResult{
		42: {Success: false, RateLimited: true, Error: "publishing media container: rate limit"},
	}}
	j, ph := newJobFixture(pr, ps)

	j.PublishOne(context.Background(), pr.due[0])

	assert.Equal(t, []int64{1}, pr.released)
	assert.Empty(t, pr.posted)
	assert.Empty(t, pr.failed)

	require.Len(t, ph.rows, 1)
	assert.False(t, ph.rows[0].Success)
	assert.True(t, ph.rows[0].RateLimited)
}

func TestPublishOneFailureMarksFailed(t *testing.T) {
	pr := newFakePostRepo(duePost(1, 42))
	ps := &fakePostingService{results: map[int64]*transfer.PostResult{
		42: {Success: false, Error: "creating media container: invalid parameter"},
	}}
	j, ph := newJobFixture(pr, ps)

	j.PublishOne(context.Background(), pr.due[0])

	assert.Equal(t, []int64{1}, pr.failed)
	assert.Equal(t, "creating media container: invalid parameter", pr.failMsg)
	assert.Empty(t, pr.posted)
	assert.Empty(t, pr.released)

	require.Len(t, ph.rows, 1)
	assert.False(t, ph.rows[0].Success)
	assert.Equal(t, "creating media container: invalid parameter", ph.rows[0].ErrorMessage)
}

func TestSweepDrainsAllDuePosts(t *testing.T) {
	pr := newFakePostRepo(duePost(1, 42), duePost(2, 42), duePost(3, 99))
	ps := &fakePostingService{}
	j, ph := newJobFixture(pr, ps)

	err := j.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, pr.listLimit)
	assert.Equal(t, []int64{1, 2, 3}, pr.posted)
	assert.Len(t, ph.rows, 3)
}

func TestMarkPostedTwiceKeepsFirstTimestamp(t *testing.T) {
	pr := newFakePostRepo(duePost(1, 42))
	ctx := context.Background()

	require.NoError(t, pr.MarkPosted(ctx, 1, "ig-123", "https://www.instagram.com/p/ig-123/"))
	first := pr.postedAt[1]

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, pr.MarkPosted(ctx, 1, "ig-123", "https://www.instagram.com/p/ig-123/"))

	assert.Equal(t, first, pr.postedAt[1])
	assert.Equal(t, models.PostStatusPosted, pr.status[1])
	assert.Equal(t, "ig-123", pr.postedID)
}

func TestSweepPropagatesListError(t *testing.T) {
	pr := newFakePostRepo()
	pr.listErr = errors.New("connection refused")
	ps := &fakePostingService{}
	j, _ := newJobFixture(pr, ps)

	err := j.Sweep(context.Background())
	require.Error(t, err)
	assert.Empty(t, ps.calls)
}
