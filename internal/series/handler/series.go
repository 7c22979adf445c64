package handler

import (
	"encoding/json"
	"net/http"

	"reservo/internal/series/service"
	httputil "reservo/pkg/http"
	"reservo/pkg/logger"
	"reservo/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SeriesHandler struct {
	service service.SeriesService
	log     *logger.Logger
}

func NewSeriesHandler(service service.SeriesService, log *logger.Logger) *SeriesHandler {
	return &SeriesHandler{
		service: service,
		log:     log,
	}
}

// Create responds 201 even when some occurrences were skipped; the
// expansion summary tells the caller which dates did not book.
func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var series model.RecurringSeries
	if err := json.NewDecoder(r.Body).Decode(&series); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	result, err := h.service.Create(r.Context(), &series)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, map[string]any{
		"series":    series,
		"expansion": result,
	})
}

func (h *SeriesHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	series, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, series)
}

func (h *SeriesHandler) GetByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	series, err := h.service.GetByCode(r.Context(), ps.ByName("code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, series)
}

func (h *SeriesHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	series, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, series, total, limit, offset)
}

func (h *SeriesHandler) GetChildren(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	children, total, err := h.service.GetChildren(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, children, total, limit, offset)
}

func (h *SeriesHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.RecurringSeriesUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	result, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"expansion": result,
	})
}

func (h *SeriesHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	series, cancelled, err := h.service.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"series":             series,
		"cancelled_children": cancelled,
	})
}

func (h *SeriesHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/series", h.Create)
	router.GET("/api/v1/series", h.GetAll)
	router.GET("/api/v1/series/id/:id", h.GetByID)
	router.PATCH("/api/v1/series/id/:id", h.Update)
	router.POST("/api/v1/series/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/series/id/:id/children", h.GetChildren)
	router.GET("/api/v1/series/code/:code", h.GetByCode)
}
