package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"martilhaven-backend/internal/cache"
	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/service"

	"github.com/gorilla/mux"
)

const defaultPopularLimit = 10

type PropertyHandler struct {
	propertySvc service.PropertyService
	querySvc    service.QueryService
	cache       cache.DisplayCache
}

func NewPropertyHandler(propertySvc service.PropertyService, querySvc service.QueryService, displayCache cache.DisplayCache) *PropertyHandler {
	if displayCache == nil {
		displayCache = cache.NewNoopCache()
	}
	return &PropertyHandler{propertySvc: propertySvc, querySvc: querySvc, cache: displayCache}
}

// List handles GET /properties?status=&city=&owner_id=&featured=
// Anonymous callers and customers only ever see approved listings.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.PropertyFilter{
		OwnerID:      q.Get("owner_id"),
		City:         q.Get("city"),
		FeaturedOnly: q.Get("featured") == "true",
	}
	for _, s := range splitList(q.Get("status")) {
		filter.Statuses = append(filter.Statuses, domain.PropertyStatus(s))
	}

	actor, _ := ActorFromContext(r.Context())
	publicView := !actor.Role.Privileged() && !(actor.Role == domain.RoleOwner && filter.OwnerID == actor.ID)
	if publicView {
		filter.Statuses = []domain.PropertyStatus{domain.PropertyStatusApproved}
	}

	key := "properties.list?" + q.Encode()
	props, err := h.propertySvc.ListProperties(r.Context(), filter)
	if err != nil {
		if publicView {
			h.serveStale(w, r, key, err)
			return
		}
		respondWithError(w, err)
		return
	}
	if publicView {
		h.remember(r.Context(), key, props)
	}
	respondWithList(w, props)
}

// Popular handles GET /properties/popular?limit=
func (h *PropertyHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit := defaultPopularLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, domain.NewValidationError("limit must be a number"))
			return
		}
		limit = n
	}

	key := "properties.popular?limit=" + strconv.Itoa(limit)
	ranked, err := h.querySvc.PopularProperties(r.Context(), limit)
	if err != nil {
		h.serveStale(w, r, key, err)
		return
	}
	h.remember(r.Context(), key, ranked)
	respondWithList(w, ranked)
}

// Get hides listings that are not approved from callers who cannot manage them
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := h.propertySvc.GetProperty(r.Context(), id)
	if err != nil {
		respondWithError(w, err)
		return
	}
	actor, _ := ActorFromContext(r.Context())
	if p.Status != domain.PropertyStatusApproved && !actor.Role.Privileged() && p.OwnerID != actor.ID {
		respondWithError(w, domain.NewNotFoundError("property", id))
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req propertyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	p, err := h.propertySvc.CreateProperty(r.Context(), actor, req.input())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req propertyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	p, err := h.propertySvc.UpdateProperty(r.Context(), actor, mux.Vars(r)["id"], req.input())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	p, err := h.propertySvc.TransitionProperty(r.Context(), actor, mux.Vars(r)["id"], domain.PropertyStatus(req.Status))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	if err := h.propertySvc.DeleteProperty(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bookings handles GET /properties/{id}/bookings
func (h *PropertyHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	bookings, err := h.querySvc.BookingsForProperty(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithList(w, bookings)
}

func (h *PropertyHandler) remember(ctx context.Context, key string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		logger.Warn("Failed to encode listing for cache", "key", key, "error", err)
		return
	}
	if err := h.cache.Set(ctx, key, body); err != nil {
		logger.Warn("Failed to cache listing", "key", key, "error", err)
	}
}

// serveStale answers a failed storage read from the display cache, marked stale.
// Any other failure, or a cache miss, propagates the original error.
func (h *PropertyHandler) serveStale(w http.ResponseWriter, r *http.Request, key string, cause error) {
	if !domain.IsKind(cause, domain.ErrorKindStorage) {
		respondWithError(w, cause)
		return
	}
	body, ok, err := h.cache.Get(r.Context(), key)
	if err != nil || !ok {
		if err != nil {
			logger.Warn("Display cache unavailable", "key", key, "error", err)
		}
		respondWithError(w, cause)
		return
	}
	logger.Warn("Serving stale listing", "key", key, "error", cause)
	w.Header().Set("X-Data-Stale", "true")
	respondWithJSON(w, http.StatusOK, listResponse{Data: json.RawMessage(body), Stale: true})
}
