package adapter

import (
	"context"

	"github.com/pulsefeed/autopub/internal/domain"
)

// Result carries the platform's reference for a published post
// (tweet ID, message ID, receipt URL — whatever the channel returns).
type Result struct {
	ExternalRef string
}

// Adapter publishes a post to one external platform.
// Implementations report every failure as an error return; they must not
// panic past this boundary. Calling Publish twice for the same post may
// create two external posts — the scheduler guarantees at most one
// invocation per post per tick.
type Adapter interface {
	Publish(ctx context.Context, p *domain.Post) (*Result, error)
}

// Registry maps each platform to its adapter. It is populated once at
// process start; an unregistered platform is a reachable runtime condition
// handled by the scheduler, not a startup failure.
type Registry struct {
	adapters map[domain.Platform]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[domain.Platform]Adapter)}
}

func (r *Registry) Register(platform domain.Platform, a Adapter) {
	r.adapters[platform] = a
}

// Resolve returns the adapter for the platform, or ErrUnsupportedPlatform.
func (r *Registry) Resolve(platform domain.Platform) (Adapter, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return nil, domain.ErrUnsupportedPlatform
	}
	return a, nil
}
