package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// topicParam extracts the topic slug from the URL (everything after
// /api/topics/). Supports encoded slashes from OpenAPI clients
// (e.g. distributed-systems%2Fraft).
func topicParam(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListTopics handles GET /api/topics.
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListTopics()
	if err != nil {
		slog.Error("list topics failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TopicListResponse{Topics: items, Total: len(items)})
}

// CreateTopic handles POST /api/topics. Creation is idempotent: an
// existing topic is returned with 200 instead of 201.
func (h *Handler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	detail, created, err := h.svc.CreateTopic(req.Slug, models.TopicType(req.Type))
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidArgument) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("create topic failed", slog.String("slug", req.Slug), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, detail)
}

// GetTopic handles GET /api/topics/*. The trailing path segments
// "section" and "links" are reserved sub-resources of the topic they
// follow; anything else is read as the topic document itself.
func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) {
	slug := topicParam(r)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}

	switch {
	case strings.HasSuffix(slug, "/section"):
		h.getSection(w, r, strings.TrimSuffix(slug, "/section"))
	case strings.HasSuffix(slug, "/links"):
		h.getLinks(w, strings.TrimSuffix(slug, "/links"))
	default:
		detail, err := h.svc.GetTopic(slug)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorBody("not found"))
			} else {
				slog.Error("get topic failed", slog.String("slug", slug), slog.String("error", err.Error()))
				writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			}
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// getSection handles GET /api/topics/*/section?path=.
func (h *Handler) getSection(w http.ResponseWriter, r *http.Request, slug string) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	content, ok := h.svc.Section(slug, path)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, SectionResponse{Slug: slug, Path: path, Content: content})
}

// getLinks handles GET /api/topics/*/links.
func (h *Handler) getLinks(w http.ResponseWriter, slug string) {
	refs, err := h.svc.Links(slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get links failed", slog.String("slug", slug), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{Slug: slug, Links: refs})
}

// DeleteTopic handles DELETE /api/topics/*.
func (h *Handler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	slug := topicParam(r)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	if err := h.svc.DeleteTopic(slug); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete topic failed", slog.String("slug", slug), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	recs, err := h.svc.Sessions(q.Get("topic"), limit)
	if err != nil {
		slog.Error("stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Sessions: recs})
}
