package handler

import (
	"encoding/json"
	"net/http"

	"reservo/internal/reservations/service"
	httputil "reservo/pkg/http"
	"reservo/pkg/logger"
	"reservo/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EquipmentHandler struct {
	service service.EquipmentService
	log     *logger.Logger
}

func NewEquipmentHandler(service service.EquipmentService, log *logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		service: service,
		log:     log,
	}
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var equipment model.Equipment
	if err := json.NewDecoder(r.Body).Decode(&equipment); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), &equipment); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, equipment)
}

func (h *EquipmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	equipment, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, equipment)
}

func (h *EquipmentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	equipment, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, equipment, total, limit, offset)
}

func (h *EquipmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/equipment", h.Create)
	router.GET("/api/v1/equipment", h.GetAll)
	router.GET("/api/v1/equipment/id/:id", h.GetByID)
}
