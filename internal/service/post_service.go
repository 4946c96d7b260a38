package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pulsefeed/autopub/internal/domain"
	"github.com/pulsefeed/autopub/internal/store"
)

// PostService is the enqueue and reporting facade consumed by the HTTP
// handlers (and, through them, the content generator and the dashboard).
// Validation happens here, before anything touches the store.
type PostService struct {
	store  store.PostStore
	logger *zap.Logger
}

func NewPostService(st store.PostStore, logger *zap.Logger) *PostService {
	return &PostService{store: st, logger: logger}
}

// Enqueue validates and persists a post in pending status. The scheduler
// picks it up on a later tick; nothing is dispatched synchronously.
func (s *PostService) Enqueue(ctx context.Context, req domain.EnqueueRequest) (*domain.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	priority := domain.DefaultPriority
	if req.Priority != nil {
		priority = *req.Priority
	}

	p := &domain.Post{
		Title:    req.Title,
		Content:  req.Content,
		Platform: req.Platform,
		Priority: priority,
	}

	if err := s.store.Enqueue(ctx, p); err != nil {
		return nil, fmt.Errorf("persist post: %w", err)
	}

	s.logger.Info("post enqueued",
		zap.Int64("post_id", p.ID),
		zap.String("platform", string(p.Platform)),
	)
	return p, nil
}

func (s *PostService) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	return s.store.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Post, int, error) {
	return s.store.List(ctx, filter)
}

func (s *PostService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.store.Stats(ctx)
}
