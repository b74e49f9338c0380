package handler

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"tablebook/internal/bookings/service"
	apperrors "tablebook/pkg/errors"
	httputil "tablebook/pkg/http"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// actorFrom reads the caller identity set by the upstream auth layer. A
// missing role is treated as a customer.
func actorFrom(r *http.Request) service.Actor {
	role := strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderUserRole)))
	if role == "" {
		role = service.RoleCustomer
	}
	return service.Actor{
		UserID: sanitizer.NormalizeIdentifier(r.Header.Get(HeaderUserID)),
		Role:   role,
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeCreated(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteCreated(w, data); err != nil {
		h.log.Error("failed to write created response", "handler", handler, "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	avail, err := h.service.CheckAvailability(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	h.writeSuccess(w, "CheckAvailability", avail)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), actorFrom(r), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	h.writeCreated(w, "Create", booking)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if actorFrom(r).Role == service.RoleCustomer {
		h.writeError(w, "GetAll", apperrors.Forbidden("Only staff can list all bookings"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}
	status := model.BookingStatus(strings.ToUpper(r.URL.Query().Get("status")))

	bookings, total, err := h.service.GetAll(r.Context(), status, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetDay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if actorFrom(r).Role == service.RoleCustomer {
		h.writeError(w, "GetDay", apperrors.Forbidden("Only staff can view the day schedule"))
		return
	}

	bookings, err := h.service.GetDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, "GetDay", err)
		return
	}

	h.writeSuccess(w, "GetDay", bookings)
}

func (h *BookingHandler) GetByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetByUser", err)
		return
	}

	userID := ps.ByName("user_id")
	actor := actorFrom(r)
	if actor.Role == service.RoleCustomer && actor.UserID != userID {
		h.writeError(w, "GetByUser", apperrors.Forbidden("You can only view your own bookings"))
		return
	}

	bookings, total, err := h.service.GetByUser(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, "GetByUser", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByUser", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}
	update.Status = model.BookingStatus(strings.ToUpper(string(update.Status)))

	booking, err := h.service.UpdateStatus(r.Context(), actorFrom(r), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	h.writeSuccess(w, "UpdateStatus", booking)
}

func (h *BookingHandler) CheckWalkIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.WalkInCheckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CheckWalkIn", err)
		return
	}

	avail, err := h.service.CheckWalkIn(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CheckWalkIn", err)
		return
	}

	h.writeSuccess(w, "CheckWalkIn", avail)
}

func (h *BookingHandler) SeatWalkIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor := actorFrom(r)
	if actor.Role == service.RoleCustomer {
		h.writeError(w, "SeatWalkIn", apperrors.Forbidden("Only staff can seat walk-ins"))
		return
	}

	var req model.SeatWalkInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SeatWalkIn", err)
		return
	}

	booking, err := h.service.SeatWalkIn(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "SeatWalkIn", err)
		return
	}

	h.writeCreated(w, "SeatWalkIn", booking)
}

func (h *BookingHandler) PredictDuration(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.PredictDurationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "PredictDuration", err)
		return
	}

	estimate, err := h.service.PredictDuration(r.Context(), &req)
	if err != nil {
		h.writeError(w, "PredictDuration", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, estimate); err != nil {
		h.log.Error("failed to write JSON response", "handler", "PredictDuration", "operation", "WriteJSON", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/check-availability", h.CheckAvailability)
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/day", h.GetDay)
	router.GET("/api/v1/bookings/user/:user_id", h.GetByUser)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.UpdateStatus)
	router.POST("/api/v1/walk-ins/check", h.CheckWalkIn)
	router.POST("/api/v1/walk-ins/seat", h.SeatWalkIn)
	router.POST("/api/v1/predict-duration", h.PredictDuration)
}
