package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/pulsefeed/autopub/internal/api/middleware"
	"github.com/pulsefeed/autopub/internal/domain"
	"github.com/pulsefeed/autopub/internal/service"
)

// PostHandler handles the enqueue endpoint and the reporting reads.
type PostHandler struct {
	svc    *service.PostService
	logger *zap.Logger
}

func NewPostHandler(svc *service.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{svc: svc, logger: logger}
}

// Enqueue handles POST /api/v1/posts
//
// @Summary     Queue a post for publication
// @Tags        posts
// @Accept      json
// @Produce     json
// @Param       body  body      domain.EnqueueRequest  true  "Post payload"
// @Success     201   {object}  domain.Post
// @Failure     422   {object}  map[string]string
// @Failure     429   {object}  map[string]string
// @Router      /api/v1/posts [post]
func (h *PostHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req domain.EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := h.svc.Enqueue(r.Context(), req)
	if err != nil {
		h.logger.Warn("enqueue failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

// GetByID handles GET /api/v1/posts/{id}
//
// @Summary  Get a post by ID
// @Tags     posts
// @Produce  json
// @Param    id   path      int  true  "Post ID"
// @Success  200  {object}  domain.Post
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/posts/{id} [get]
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// List handles GET /api/v1/posts
//
// @Summary  List posts with filtering and pagination
// @Tags     posts
// @Produce  json
// @Param    status    query     string  false  "Filter by status"
// @Param    platform  query     string  false  "Filter by platform"
// @Param    limit     query     int     false  "Items per page (default 20, max 100)"
// @Param    offset    query     int     false  "Offset (default 0)"
// @Success  200       {object}  map[string]any
// @Router   /api/v1/posts [get]
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)
	posts, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	if posts == nil {
		posts = []*domain.Post{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":   posts,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func parseListFilter(r *http.Request) domain.ListFilter {
	q := r.URL.Query()
	filter := domain.ListFilter{Limit: 20}

	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	if o, err := strconv.Atoi(q.Get("offset")); err == nil && o > 0 {
		filter.Offset = o
	}
	if s := q.Get("status"); s != "" {
		st := domain.Status(s)
		filter.Status = &st
	}
	if p := q.Get("platform"); p != "" {
		pl := domain.Platform(p)
		filter.Platform = &pl
	}
	return filter
}
