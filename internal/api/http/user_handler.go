package http

import (
	"net/http"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/service"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	user, err := h.userSvc.GetProfile(r.Context(), actor)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	user, err := h.userSvc.UpdateProfile(r.Context(), actor, service.ProfileInput{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// List handles GET /users?role=&status=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := h.userSvc.ListUsers(r.Context(), repository.UserFilter{
		Role:   domain.Role(q.Get("role")),
		Status: domain.UserStatus(q.Get("status")),
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithList(w, users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	user, err := h.userSvc.CreateUser(r.Context(), service.UserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	user, err := h.userSvc.UpdateUser(r.Context(), actor, mux.Vars(r)["id"], service.UserUpdate{
		Name:   req.Name,
		Phone:  req.Phone,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	if err := h.userSvc.DeleteUser(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
