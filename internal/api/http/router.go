package http

import (
	"net/http"

	"martilhaven-backend/internal/cache"
	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/security"
	"martilhaven-backend/internal/service"

	"github.com/gorilla/mux"
)

// Services bundles the application services the REST API exposes
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Properties    service.PropertyService
	Bookings      service.BookingService
	Forklifts     service.ForkliftService
	Operators     service.OperatorService
	Operations    service.OperationService
	Queries       service.QueryService
	Notifications service.NotificationService
}

// NewRouter builds the /api/v1 surface. Every route is named; the name keys the
// route security table.
func NewRouter(svc Services, tokens security.TokenManager, displayCache cache.DisplayCache) *mux.Router {
	auth := NewAuthHandler(svc.Auth)
	users := NewUserHandler(svc.Users)
	properties := NewPropertyHandler(svc.Properties, svc.Queries, displayCache)
	bookings := NewBookingHandler(svc.Bookings)
	fleet := NewFleetHandler(svc.Forklifts, svc.Operators, svc.Operations)
	reports := NewReportHandler(svc.Queries, svc.Notifications)

	router := mux.NewRouter()
	router.Use(LoggingMiddleware)
	router.Use(NewAuthMiddleware(tokens).Middleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, domain.NewNotFoundError("route", r.URL.Path))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: errorBody{Code: domain.ErrorKindValidation, Message: "method not allowed"}})
	})

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("health")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", auth.Register).Methods(http.MethodPost).Name("auth.register")
	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost).Name("auth.login")
	api.HandleFunc("/auth/refresh", auth.Refresh).Methods(http.MethodPost).Name("auth.refresh")

	// Properties
	api.HandleFunc("/properties", properties.List).Methods(http.MethodGet).Name("properties.list")
	api.HandleFunc("/properties", properties.Create).Methods(http.MethodPost).Name("properties.create")
	api.HandleFunc("/properties/popular", properties.Popular).Methods(http.MethodGet).Name("properties.popular")
	api.HandleFunc("/properties/{id}", properties.Get).Methods(http.MethodGet).Name("properties.get")
	api.HandleFunc("/properties/{id}", properties.Update).Methods(http.MethodPut).Name("properties.update")
	api.HandleFunc("/properties/{id}", properties.Delete).Methods(http.MethodDelete).Name("properties.delete")
	api.HandleFunc("/properties/{id}/status", properties.Transition).Methods(http.MethodPatch).Name("properties.status")
	api.HandleFunc("/properties/{id}/bookings", properties.Bookings).Methods(http.MethodGet).Name("properties.bookings")

	// Bookings
	api.HandleFunc("/bookings", bookings.List).Methods(http.MethodGet).Name("bookings.list")
	api.HandleFunc("/bookings", bookings.Create).Methods(http.MethodPost).Name("bookings.create")
	api.HandleFunc("/bookings/{id}", bookings.Get).Methods(http.MethodGet).Name("bookings.get")
	api.HandleFunc("/bookings/{id}", bookings.Update).Methods(http.MethodPut).Name("bookings.update")
	api.HandleFunc("/bookings/{id}/status", bookings.Transition).Methods(http.MethodPatch).Name("bookings.status")
	api.HandleFunc("/bookings/{id}/cancel", bookings.Cancel).Methods(http.MethodPost).Name("bookings.cancel")

	// Reservations
	api.HandleFunc("/reservations/active", reports.ActiveReservations).Methods(http.MethodGet).Name("reservations.active")
	api.HandleFunc("/users/{id}/reservations", reports.UserReservations).Methods(http.MethodGet).Name("users.reservations")

	// Users
	api.HandleFunc("/users", users.List).Methods(http.MethodGet).Name("users.list")
	api.HandleFunc("/users", users.Create).Methods(http.MethodPost).Name("users.create")
	api.HandleFunc("/users/me", users.GetProfile).Methods(http.MethodGet).Name("users.me.get")
	api.HandleFunc("/users/me", users.UpdateProfile).Methods(http.MethodPut).Name("users.me.update")
	api.HandleFunc("/users/{id}", users.Update).Methods(http.MethodPut).Name("users.update")
	api.HandleFunc("/users/{id}", users.Delete).Methods(http.MethodDelete).Name("users.delete")

	// Notifications
	api.HandleFunc("/notifications", reports.Notifications).Methods(http.MethodGet).Name("notifications.list")
	api.HandleFunc("/notifications/{id}/read", reports.MarkNotificationRead).Methods(http.MethodPost).Name("notifications.read")

	// Admin
	api.HandleFunc("/admin/stats", reports.AdminStats).Methods(http.MethodGet).Name("admin.stats")

	// Fleet
	api.HandleFunc("/forklifts", fleet.ListForklifts).Methods(http.MethodGet).Name("forklifts.list")
	api.HandleFunc("/forklifts", fleet.CreateForklift).Methods(http.MethodPost).Name("forklifts.create")
	api.HandleFunc("/forklifts/{id}", fleet.GetForklift).Methods(http.MethodGet).Name("forklifts.get")
	api.HandleFunc("/forklifts/{id}", fleet.UpdateForklift).Methods(http.MethodPut).Name("forklifts.update")
	api.HandleFunc("/forklifts/{id}", fleet.DeleteForklift).Methods(http.MethodDelete).Name("forklifts.delete")
	api.HandleFunc("/forklifts/{id}/status", fleet.TransitionForklift).Methods(http.MethodPatch).Name("forklifts.status")
	api.HandleFunc("/operators", fleet.ListOperators).Methods(http.MethodGet).Name("operators.list")
	api.HandleFunc("/operators", fleet.CreateOperator).Methods(http.MethodPost).Name("operators.create")
	api.HandleFunc("/operators/{id}", fleet.GetOperator).Methods(http.MethodGet).Name("operators.get")
	api.HandleFunc("/operators/{id}", fleet.UpdateOperator).Methods(http.MethodPut).Name("operators.update")
	api.HandleFunc("/operators/{id}", fleet.DeleteOperator).Methods(http.MethodDelete).Name("operators.delete")
	api.HandleFunc("/operations", fleet.ListOperations).Methods(http.MethodGet).Name("operations.list")
	api.HandleFunc("/operations", fleet.CreateOperation).Methods(http.MethodPost).Name("operations.create")
	api.HandleFunc("/operations/{id}", fleet.GetOperation).Methods(http.MethodGet).Name("operations.get")
	api.HandleFunc("/operations/{id}", fleet.UpdateOperation).Methods(http.MethodPut).Name("operations.update")
	api.HandleFunc("/operations/{id}/status", fleet.TransitionOperation).Methods(http.MethodPatch).Name("operations.status")
	api.HandleFunc("/operations/{id}/complete", fleet.CompleteOperation).Methods(http.MethodPost).Name("operations.complete")
	api.HandleFunc("/fleet/overview", reports.FleetOverview).Methods(http.MethodGet).Name("fleet.overview")

	return router
}
