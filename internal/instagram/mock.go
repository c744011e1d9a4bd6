package instagram

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// MockClient simulates the Graph API with synthesized ids and an
// artificial delay. It performs no network calls and satisfies Client, so
// the rest of the system cannot tell it apart from the real thing.
type MockClient struct {
	delay time.Duration
}

func NewMockClient(delay time.Duration) *MockClient {
	return &MockClient{delay: delay}
}

func (m *MockClient) CreateMediaContainer(ctx context.Context, imageURL, caption string) (string, error) {
	if err := sleepContext(ctx, m.delay); err != nil {
		return "", err
	}
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return "mock-container-" + id, nil
}

func (m *MockClient) PublishMediaContainer(ctx context.Context, containerID string) (string, error) {
	if err := sleepContext(ctx, m.delay); err != nil {
		return "", err
	}
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return "mock-post-" + id, nil
}

func (m *MockClient) GetPermalink(ctx context.Context, mediaID string) (string, error) {
	if err := sleepContext(ctx, m.delay); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://www.instagram.com/p/%s/", mediaID), nil
}

func (m *MockClient) ValidateToken(ctx context.Context) bool {
	if err := sleepContext(ctx, m.delay); err != nil {
		return false
	}
	return true
}
