package http

import (
	"net/http"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/service"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

// List handles GET /bookings?property_id=&guest_id=&guest_email=&status=
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.BookingFilter{
		PropertyID: q.Get("property_id"),
		GuestID:    q.Get("guest_id"),
		GuestEmail: q.Get("guest_email"),
	}
	for _, s := range splitList(q.Get("status")) {
		filter.Statuses = append(filter.Statuses, domain.BookingStatus(s))
	}
	bookings, err := h.bookingSvc.ListBookings(r.Context(), filter)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithList(w, bookings)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	b, err := h.bookingSvc.GetBooking(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(w, err)
		return
	}
	b, err := h.bookingSvc.CreateBooking(r.Context(), actor, in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req bookingUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(w, err)
		return
	}
	b, err := h.bookingSvc.UpdateBooking(r.Context(), actor, mux.Vars(r)["id"], in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

// Transition handles PATCH /bookings/{id}/status
func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	b, err := h.bookingSvc.TransitionBooking(r.Context(), actor, mux.Vars(r)["id"], domain.BookingStatus(req.Status))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}

// Cancel handles POST /bookings/{id}/cancel. Cancelling twice is not an error.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	b, err := h.bookingSvc.CancelBooking(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, b)
}
