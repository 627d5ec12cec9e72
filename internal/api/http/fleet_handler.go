package http

import (
	"net/http"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/service"

	"github.com/gorilla/mux"
)

// FleetHandler serves forklifts, operators and operations
type FleetHandler struct {
	forkliftSvc  service.ForkliftService
	operatorSvc  service.OperatorService
	operationSvc service.OperationService
}

func NewFleetHandler(forkliftSvc service.ForkliftService, operatorSvc service.OperatorService, operationSvc service.OperationService) *FleetHandler {
	return &FleetHandler{forkliftSvc: forkliftSvc, operatorSvc: operatorSvc, operationSvc: operationSvc}
}

func (h *FleetHandler) ListForklifts(w http.ResponseWriter, r *http.Request) {
	var filter repository.ForkliftFilter
	for _, s := range splitList(r.URL.Query().Get("status")) {
		filter.Statuses = append(filter.Statuses, domain.ForkliftStatus(s))
	}
	forklifts, err := h.forkliftSvc.ListForklifts(r.Context(), filter)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithList(w, forklifts)
}

func (h *FleetHandler) GetForklift(w http.ResponseWriter, r *http.Request) {
	f, err := h.forkliftSvc.GetForklift(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, f)
}

func (h *FleetHandler) CreateForklift(w http.ResponseWriter, r *http.Request) {
	var req forkliftRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	f, err := h.forkliftSvc.CreateForklift(r.Context(), req.input())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, f)
}

func (h *FleetHandler) UpdateForklift(w http.ResponseWriter, r *http.Request) {
	var req forkliftRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	f, err := h.forkliftSvc.UpdateForklift(r.Context(), mux.Vars(r)["id"], req.input())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, f)
}

func (h *FleetHandler) TransitionForklift(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	f, err := h.forkliftSvc.TransitionForklift(r.Context(), mux.Vars(r)["id"], domain.ForkliftStatus(req.Status))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, f)
}

func (h *FleetHandler) DeleteForklift(w http.ResponseWriter, r *http.Request) {
	if err := h.forkliftSvc.DeleteForklift(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) ListOperators(w http.ResponseWriter, r *http.Request) {
	operators, err := h.operatorSvc.ListOperators(r.Context(), repository.OperatorFilter{
		Status: domain.UserStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithList(w, operators)
}

func (h *FleetHandler) GetOperator(w http.ResponseWriter, r *http.Request) {
	o, err := h.operatorSvc.GetOperator(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *FleetHandler) CreateOperator(w http.ResponseWriter, r *http.Request) {
	var req operatorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(w, err)
		return
	}
	o, err := h.operatorSvc.CreateOperator(r.Context(), in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, o)
}

func (h *FleetHandler) UpdateOperator(w http.ResponseWriter, r *http.Request) {
	var req operatorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(w, err)
		return
	}
	o, err := h.operatorSvc.UpdateOperator(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *FleetHandler) DeleteOperator(w http.ResponseWriter, r *http.Request) {
	if err := h.operatorSvc.DeleteOperator(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListOperations handles GET /operations?forklift_id=&operator_id=&status=
func (h *FleetHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.OperationFilter{
		ForkliftID: q.Get("forklift_id"),
		OperatorID: q.Get("operator_id"),
	}
	for _, s := range splitList(q.Get("status")) {
		filter.Statuses = append(filter.Statuses, domain.OperationStatus(s))
	}
	operations, err := h.operationSvc.ListOperations(r.Context(), filter)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithList(w, operations)
}

func (h *FleetHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	o, err := h.operationSvc.GetOperation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *FleetHandler) CreateOperation(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req operationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	o, err := h.operationSvc.CreateOperation(r.Context(), actor, req.input())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, o)
}

func (h *FleetHandler) UpdateOperation(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req operationUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	o, err := h.operationSvc.UpdateOperation(r.Context(), actor, mux.Vars(r)["id"], req.input())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *FleetHandler) TransitionOperation(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req operationStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	reading := domain.MeterReading{CurrentHourMeter: req.CurrentHourMeter, GasConsumption: req.GasConsumption}
	o, err := h.operationSvc.TransitionOperation(r.Context(), actor, mux.Vars(r)["id"], domain.OperationStatus(req.Status), reading)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

// CompleteOperation handles POST /operations/{id}/complete. An empty body keeps the last reading.
func (h *FleetHandler) CompleteOperation(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req meterReadingRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	reading := domain.MeterReading{CurrentHourMeter: req.CurrentHourMeter, GasConsumption: req.GasConsumption}
	o, err := h.operationSvc.CompleteOperation(r.Context(), actor, mux.Vars(r)["id"], reading)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}
