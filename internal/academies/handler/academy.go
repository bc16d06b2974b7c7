package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"courtside/internal/academies/service"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

type AcademyHandler struct {
	service service.AcademyService
	log     *logger.Logger
}

func NewAcademyHandler(service service.AcademyService, log *logger.Logger) *AcademyHandler {
	return &AcademyHandler{
		service: service,
		log:     log,
	}
}

type configureSportsRequest struct {
	Sports []model.Sport `json:"sports"`
}

func (h *AcademyHandler) Onboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var academy model.Academy
	if err := json.NewDecoder(r.Body).Decode(&academy); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Onboard", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Onboard(r.Context(), &academy); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Onboard", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, academy); err != nil {
		h.log.Error("failed to write created response", "handler", "Onboard", "operation", "WriteCreated", "error", err)
	}
}

func (h *AcademyHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	academy, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, academy); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AcademyHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	academies, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, academies, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *AcademyHandler) ConfigureSports(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req configureSportsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ConfigureSports", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	academy, err := h.service.ConfigureSports(r.Context(), id, req.Sports)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ConfigureSports", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, academy); err != nil {
		h.log.Error("failed to write success response", "handler", "ConfigureSports", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AcademyHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	city := query.Get("city")
	sport := query.Get("sport")

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	academies, total, err := h.service.Search(r.Context(), city, sport, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, academies, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *AcademyHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/academies", h.Onboard)
	router.GET("/api/v1/academies", h.GetAll)
	router.GET("/api/v1/academies/id/:id", h.GetByID)
	router.PUT("/api/v1/academies/id/:id/sports", h.ConfigureSports)
	router.GET("/api/v1/academies/search", h.Search)
}
