package http

import (
	"net/http"
	"strconv"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/service"

	"github.com/gorilla/mux"
)

// ReportHandler serves the read-side projections and the caller's notifications
type ReportHandler struct {
	querySvc service.QueryService
	noteSvc  service.NotificationService
}

func NewReportHandler(querySvc service.QueryService, noteSvc service.NotificationService) *ReportHandler {
	return &ReportHandler{querySvc: querySvc, noteSvc: noteSvc}
}

// ActiveReservations handles GET /reservations/active?resource_id=
func (h *ReportHandler) ActiveReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.querySvc.ActiveReservations(r.Context(), r.URL.Query().Get("resource_id"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithList(w, reservations)
}

// UserReservations handles GET /users/{id}/reservations. Non-staff callers may only read their own.
func (h *ReportHandler) UserReservations(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	id := mux.Vars(r)["id"]
	if id == "me" {
		id = actor.ID
	}
	if id != actor.ID && !actor.Role.Privileged() {
		respondWithError(w, domain.NewForbiddenError("you may only list your own reservations"))
		return
	}
	reservations, err := h.querySvc.ReservationsForActor(r.Context(), id)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithList(w, reservations)
}

func (h *ReportHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.querySvc.AdminStats(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) FleetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.querySvc.FleetOverview(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, overview)
}

type notificationsResponse struct {
	Data  []domain.Notification `json:"data"`
	Total int32                 `json:"total"`
	Page  int32                 `json:"page"`
}

// Notifications handles GET /notifications?page=&page_size=
func (h *ReportHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)
	notes, total, err := h.noteSvc.GetNotifications(r.Context(), actor.ID, page, pageSize)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	respondWithJSON(w, http.StatusOK, notificationsResponse{Data: notes, Total: total, Page: max(page, 1)})
}

func (h *ReportHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	if err := h.noteSvc.MarkAsRead(r.Context(), actor.ID, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(n)
}
