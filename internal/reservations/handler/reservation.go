package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"reservo/internal/reservations/service"
	apperrors "reservo/pkg/errors"
	httputil "reservo/pkg/http"
	"reservo/pkg/logger"
	"reservo/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), &reservation); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, reservation)
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) GetByNumber(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByNumber(r.Context(), ps.ByName("number"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) GetByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByCode(r.Context(), ps.ByName("code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	equipmentID := query.Get("equipment_id")
	status := query.Get("status")
	startTime, endTime, err := parseTimeRange(query.Get("start_time"), query.Get("end_time"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var reservations []*model.Reservation
	var total int64
	if equipmentID != "" || status != "" || startTime != nil || endTime != nil {
		reservations, total, err = h.service.Search(r.Context(), equipmentID, status, startTime, endTime, limit, offset)
	} else {
		reservations, total, err = h.service.GetAll(r.Context(), limit, offset)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, reservations, total, limit, offset)
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	updated, err := h.service.Update(r.Context(), ps.ByName("id"), &updates, actorFrom(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, updated)
}

func (h *ReservationHandler) UpdateByNumber(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	updated, err := h.service.UpdateByNumber(r.Context(), ps.ByName("number"), &updates, actorFrom(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, updated)
}

func (h *ReservationHandler) CancelByNumber(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cancelled, err := h.service.CancelByNumber(r.Context(), ps.ByName("number"), actorFrom(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, cancelled)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cancelled, err := h.service.Cancel(r.Context(), ps.ByName("id"), actorFrom(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, cancelled)
}

func (h *ReservationHandler) GetHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entries, err := h.service.GetHistory(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, entries)
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	equipmentID := query.Get("equipment_id")
	if equipmentID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("'equipment_id' query parameter is required"))
		return
	}

	startTime, endTime, err := parseTimeRange(query.Get("start_time"), query.Get("end_time"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if startTime == nil || endTime == nil {
		httputil.WriteError(w, apperrors.InvalidInput("'start_time' and 'end_time' query parameters are required"))
		return
	}

	decision, err := h.service.CheckAvailability(r.Context(), equipmentID, *startTime, *endTime)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, decision)
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PATCH("/api/v1/reservations/id/:id", h.Update)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/reservations/id/:id/history", h.GetHistory)
	router.GET("/api/v1/reservations/number/:number", h.GetByNumber)
	router.PATCH("/api/v1/reservations/number/:number", h.UpdateByNumber)
	router.POST("/api/v1/reservations/number/:number/cancel", h.CancelByNumber)
	router.GET("/api/v1/reservations/code/:code", h.GetByCode)
	router.GET("/api/v1/availability", h.CheckAvailability)
}

func parseTimeRange(startStr, endStr string) (*time.Time, *time.Time, error) {
	var startTime, endTime *time.Time

	if startStr != "" {
		parsed, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("invalid start_time format, must be RFC3339")
		}
		startTime = &parsed
	}
	if endStr != "" {
		parsed, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return nil, nil, apperrors.InvalidInput("invalid end_time format, must be RFC3339")
		}
		endTime = &parsed
	}

	return startTime, endTime, nil
}

// actorFrom attributes audit entries; the header is optional.
func actorFrom(r *http.Request) string {
	return r.Header.Get("X-Requested-By")
}
