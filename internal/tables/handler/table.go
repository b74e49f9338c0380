package handler

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"tablebook/internal/tables/service"
	apperrors "tablebook/pkg/errors"
	httputil "tablebook/pkg/http"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

const (
	HeaderUserRole = "X-User-Role"
	RoleManager    = "MANAGER"
)

type TableHandler struct {
	service service.TableService
	log     *logger.Logger
}

func NewTableHandler(service service.TableService, log *logger.Logger) *TableHandler {
	return &TableHandler{
		service: service,
		log:     log,
	}
}

func (h *TableHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// managerOnly rejects callers the upstream auth layer did not mark as
// managers.
func (h *TableHandler) managerOnly(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderUserRole)), RoleManager) {
			h.writeError(w, "managerOnly", apperrors.Forbidden("Only managers can modify tables"))
			return
		}
		next(w, r, ps)
	}
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var table model.Table
	if err := httputil.DecodeJSON(r, &table); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &table); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, table); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *TableHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tables, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, tables); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TableHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	table, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, table); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.TableUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}
	update.Status = model.TableStatus(strings.ToUpper(string(update.Status)))

	table, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, table); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TableHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/tables", h.GetAll)
	router.POST("/api/v1/tables", h.managerOnly(h.Create))
	router.GET("/api/v1/tables/id/:id", h.GetByID)
	router.PATCH("/api/v1/tables/id/:id", h.managerOnly(h.Update))
	router.DELETE("/api/v1/tables/id/:id", h.managerOnly(h.Delete))
}
