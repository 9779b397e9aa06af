package equipment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gymhub/internal/api"
	"gymhub/internal/apperror"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

func respondList(c *gin.Context, items []Equipment, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func respond(c *gin.Context, status int, e *Equipment, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(status, e)
}

func respondCount(c *gin.Context, n int64, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

// @Summary      Register equipment
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body equipment.EquipmentRequest true "Equipment payload"
// @Success      201 {object} equipment.Equipment
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /equipment [post]
func (h *Handler) Create(c *gin.Context) {
	var req EquipmentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Create(c.Request.Context(), req)
	respond(c, http.StatusCreated, e, err)
}

// @Summary      List equipment
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} equipment.Equipment
// @Router       /equipment [get]
func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	respondList(c, items, err)
}

// @Summary      Get equipment
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Equipment ID"
// @Success      200 {object} equipment.Equipment
// @Failure      404 {object} api.ErrorResponse
// @Router       /equipment/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), id)
	respond(c, http.StatusOK, e, err)
}

// @Summary      Equipment by status
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Param        status path string true "AVAILABLE, IN_USE, MAINTENANCE, OUT_OF_ORDER or RETIRED"
// @Success      200 {array} equipment.Equipment
// @Router       /equipment/status/{status} [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status, ok := ParseStatus(c.Param("status"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid equipment status"))
		return
	}
	items, err := h.service.ListByStatus(c.Request.Context(), status)
	respondList(c, items, err)
}

// @Summary      Equipment by type
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Param        type path string true "Equipment type"
// @Success      200 {array} equipment.Equipment
// @Router       /equipment/type/{type} [get]
func (h *Handler) ListByType(c *gin.Context) {
	t, ok := ParseType(c.Param("type"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid equipment type"))
		return
	}
	items, err := h.service.ListByType(c.Request.Context(), t)
	respondList(c, items, err)
}

// @Summary      Equipment at a location
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Param        location path string true "Location"
// @Success      200 {array} equipment.Equipment
// @Router       /equipment/location/{location} [get]
func (h *Handler) ListByLocation(c *gin.Context) {
	items, err := h.service.ListByLocation(c.Request.Context(), c.Param("location"))
	respondList(c, items, err)
}

// @Summary      Available equipment
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} equipment.Equipment
// @Router       /equipment/available [get]
func (h *Handler) ListAvailable(c *gin.Context) {
	items, err := h.service.ListAvailable(c.Request.Context())
	respondList(c, items, err)
}

// @Summary      Equipment due for maintenance
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} equipment.Equipment
// @Router       /equipment/maintenance-needed [get]
func (h *Handler) ListNeedingMaintenance(c *gin.Context) {
	items, err := h.service.ListNeedingMaintenance(c.Request.Context())
	respondList(c, items, err)
}

// @Summary      Equipment whose warranty expires before a date
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Param        before query string true "RFC3339 date"
// @Success      200 {array} equipment.Equipment
// @Router       /equipment/warranty-expiring [get]
func (h *Handler) ListWarrantyExpiring(c *gin.Context) {
	before, err := api.ParseTimeQuery(c, "before")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	items, err := h.service.ListWarrantyExpiring(c.Request.Context(), before)
	respondList(c, items, err)
}

// @Summary      Equipment purchased in a date range
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "RFC3339 start"
// @Param        end query string true "RFC3339 end"
// @Success      200 {array} equipment.Equipment
// @Router       /equipment/purchased [get]
func (h *Handler) ListPurchasedBetween(c *gin.Context) {
	start, end, err := api.ParseTimeRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	items, err := h.service.ListPurchasedBetween(c.Request.Context(), start, end)
	respondList(c, items, err)
}

// @Summary      Search equipment by name or description
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Param        q query string true "Search term"
// @Success      200 {array} equipment.Equipment
// @Router       /equipment/search [get]
func (h *Handler) Search(c *gin.Context) {
	items, err := h.service.Search(c.Request.Context(), c.Query("q"))
	respondList(c, items, err)
}

// @Summary      Count available equipment
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.CountResponse
// @Router       /equipment/count/available [get]
func (h *Handler) CountAvailable(c *gin.Context) {
	n, err := h.service.CountAvailable(c.Request.Context())
	respondCount(c, n, err)
}

// @Summary      Count equipment in maintenance
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.CountResponse
// @Router       /equipment/count/maintenance [get]
func (h *Handler) CountInMaintenance(c *gin.Context) {
	n, err := h.service.CountInMaintenance(c.Request.Context())
	respondCount(c, n, err)
}

// @Summary      Update equipment
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Equipment ID"
// @Param        request body equipment.EquipmentRequest true "Equipment payload"
// @Success      200 {object} equipment.Equipment
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /equipment/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req EquipmentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Update(c.Request.Context(), id, req)
	respond(c, http.StatusOK, e, err)
}

// @Summary      Change equipment status
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Equipment ID"
// @Param        request body equipment.StatusRequest true "New status"
// @Success      200 {object} equipment.Equipment
// @Router       /equipment/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req StatusRequest
	if !api.BindJSON(c, &req) {
		return
	}
	status, _ := ParseStatus(req.Status)

	e, err := h.service.UpdateStatus(c.Request.Context(), id, status)
	respond(c, http.StatusOK, e, err)
}

// @Summary      Schedule maintenance
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Equipment ID"
// @Param        request body equipment.MaintenanceRequest true "Next maintenance date"
// @Success      200 {object} equipment.Equipment
// @Router       /equipment/{id}/maintenance/schedule [put]
func (h *Handler) ScheduleMaintenance(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req MaintenanceRequest
	if !api.BindJSON(c, &req) {
		return
	}

	e, err := h.service.ScheduleMaintenance(c.Request.Context(), id, req.NextMaintenanceDate)
	respond(c, http.StatusOK, e, err)
}

// @Summary      Complete maintenance
// @Tags         equipment
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Equipment ID"
// @Success      200 {object} equipment.Equipment
// @Router       /equipment/{id}/maintenance/complete [put]
func (h *Handler) CompleteMaintenance(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	e, err := h.service.CompleteMaintenance(c.Request.Context(), id)
	respond(c, http.StatusOK, e, err)
}

// @Summary      Set warranty expiry
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Equipment ID"
// @Param        request body equipment.WarrantyRequest true "Warranty expiry"
// @Success      200 {object} equipment.Equipment
// @Router       /equipment/{id}/warranty [put]
func (h *Handler) SetWarrantyExpiry(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req WarrantyRequest
	if !api.BindJSON(c, &req) {
		return
	}

	e, err := h.service.SetWarrantyExpiry(c.Request.Context(), id, req.WarrantyExpiry)
	respond(c, http.StatusOK, e, err)
}

// @Summary      Delete equipment
// @Tags         equipment
// @Security     BearerAuth
// @Param        id path int true "Equipment ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /equipment/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
