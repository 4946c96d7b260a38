package domain

import "time"

// Platform is the publication target for a post.
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformTelegram Platform = "telegram"
	PlatformWebhook  Platform = "webhook"
)

func (p Platform) IsValid() bool {
	switch p {
	case PlatformTwitter, PlatformTelegram, PlatformWebhook:
		return true
	}
	return false
}

// Status tracks the lifecycle of a post. Transitions are forward-only:
// pending → processing → done | failed. A failed post is terminal and is
// never retried automatically.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDone, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// DefaultPriority is assigned when an enqueue request omits priority.
// Priority is a stored hint only; dequeue order is strictly FIFO.
const DefaultPriority = 1

// Post is the core domain entity: one unit of content awaiting publication.
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Platform     Platform  `json:"platform"`
	Priority     int       `json:"priority"`
	Status       Status    `json:"status"`
	ExternalRef  *string   `json:"external_ref,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EnqueueRequest is the inbound payload for queueing a post.
type EnqueueRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Platform Platform `json:"platform"`
	Priority *int     `json:"priority,omitempty"`
}

func (r *EnqueueRequest) Validate() error {
	if !r.Platform.IsValid() {
		return ErrInvalidPlatform
	}
	if r.Content == "" {
		return ErrInvalidContent
	}
	if r.Priority != nil && *r.Priority < 0 {
		return ErrInvalidPriority
	}
	return nil
}

// ListFilter holds query parameters for the reporting API.
type ListFilter struct {
	Status   *Status
	Platform *Platform
	Limit    int
	Offset   int
}

// Stats is the aggregate snapshot served by the reporting API.
type Stats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}
