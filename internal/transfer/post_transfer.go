package transfer

type PostCreation struct {
	Caption       string `json:"caption"`
	MediaURL      string `json:"media_url"`
	ScheduledTime string `json:"scheduled_time"`
}

type PostNowRequest struct {
	Caption  string `json:"caption"`
	MediaURL string `json:"media_url"`
}

// PostResult is the structured outcome of a publish attempt. Callers check
// Success instead of handling errors; RateLimited is set apart from other
// failures so they can defer the post rather than mark it failed.
type PostResult struct {
	Success     bool   `json:"success"`
	PostID      string `json:"post_id,omitempty"`
	Permalink   string `json:"permalink,omitempty"`
	RateLimited bool   `json:"rate_limited,omitempty"`
	Error       string `json:"error,omitempty"`
}
