package gymclass

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

func (h *Handler) respondList(c *gin.Context, classes []GymClass, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if classes == nil {
		classes = []GymClass{}
	}
	c.JSON(http.StatusOK, classes)
}

// @Summary      Create a gym class
// @Tags         gym-classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body gymclass.ClassRequest true "Class payload"
// @Success      201 {object} gymclass.GymClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /gym-classes [post]
func (h *Handler) Create(c *gin.Context) {
	var req ClassRequest
	if !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, g)
}

// @Summary      List gym classes
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} gymclass.GymClass
// @Router       /gym-classes [get]
func (h *Handler) List(c *gin.Context) {
	classes, err := h.service.List(c.Request.Context())
	h.respondList(c, classes, err)
}

// @Summary      Get a gym class
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Class ID"
// @Success      200 {object} gymclass.GymClass
// @Failure      404 {object} api.ErrorResponse
// @Router       /gym-classes/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	g, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

// @Summary      Classes with free spots
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} gymclass.GymClass
// @Router       /gym-classes/available [get]
func (h *Handler) ListAvailable(c *gin.Context) {
	classes, err := h.service.ListAvailable(c.Request.Context())
	h.respondList(c, classes, err)
}

// @Summary      Full classes
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} gymclass.GymClass
// @Router       /gym-classes/full [get]
func (h *Handler) ListFull(c *gin.Context) {
	classes, err := h.service.ListFull(c.Request.Context())
	h.respondList(c, classes, err)
}

// @Summary      Classes by status
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Param        status path string true "ACTIVE, INACTIVE, CANCELLED or FULL"
// @Success      200 {array} gymclass.GymClass
// @Failure      400 {object} api.ErrorResponse
// @Router       /gym-classes/status/{status} [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status, ok := ParseStatus(c.Param("status"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid class status"))
		return
	}
	classes, err := h.service.ListByStatus(c.Request.Context(), status)
	h.respondList(c, classes, err)
}

// ListByTrainer serves both the full and the active-only listing.
//
// @Summary      Classes by trainer
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Param        trainerId path int true "Trainer ID"
// @Success      200 {array} gymclass.GymClass
// @Router       /gym-classes/trainer/{trainerId} [get]
// @Router       /gym-classes/trainer/{trainerId}/active [get]
func (h *Handler) ListByTrainer(activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainerID, err := api.ParseID(c, "trainerId")
		if err != nil {
			api.RespondError(c, err)
			return
		}
		classes, err := h.service.ListByTrainer(c.Request.Context(), trainerID, activeOnly)
		h.respondList(c, classes, err)
	}
}

// @Summary      Classes by type
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Param        type path string true "Class type"
// @Success      200 {array} gymclass.GymClass
// @Failure      400 {object} api.ErrorResponse
// @Router       /gym-classes/type/{type} [get]
// @Router       /gym-classes/type/{type}/active [get]
func (h *Handler) ListByType(activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		classType, ok := ParseClassType(c.Param("type"))
		if !ok {
			api.RespondError(c, apperror.Invalid("Invalid class type"))
			return
		}
		classes, err := h.service.ListByType(c.Request.Context(), classType, activeOnly)
		h.respondList(c, classes, err)
	}
}

// @Summary      Classes by location
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Param        location path string true "Location"
// @Success      200 {array} gymclass.GymClass
// @Router       /gym-classes/location/{location} [get]
func (h *Handler) ListByLocation(c *gin.Context) {
	classes, err := h.service.ListByLocation(c.Request.Context(), c.Param("location"))
	h.respondList(c, classes, err)
}

// @Summary      Active classes scheduled on a day
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Day code, e.g. MON"
// @Success      200 {array} gymclass.GymClass
// @Router       /gym-classes/day/{day} [get]
func (h *Handler) ListByDay(c *gin.Context) {
	classes, err := h.service.ListByDay(c.Request.Context(), c.Param("day"))
	h.respondList(c, classes, err)
}

// @Summary      Active classes starting within a time-of-day window
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "HH:MM"
// @Param        end query string true "HH:MM"
// @Success      200 {array} gymclass.GymClass
// @Failure      400 {object} api.ErrorResponse
// @Router       /gym-classes/time-range [get]
func (h *Handler) ListByTimeRange(c *gin.Context) {
	classes, err := h.service.ListByTimeRange(c.Request.Context(), c.Query("start"), c.Query("end"))
	h.respondList(c, classes, err)
}

// @Summary      Search classes by name or description
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Param        q query string true "Search term"
// @Success      200 {array} gymclass.GymClass
// @Router       /gym-classes/search [get]
func (h *Handler) Search(c *gin.Context) {
	classes, err := h.service.Search(c.Request.Context(), c.Query("q"))
	h.respondList(c, classes, err)
}

// @Summary      Number of active classes
// @Tags         gym-classes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.CountResponse
// @Router       /gym-classes/count/active [get]
func (h *Handler) CountActive(c *gin.Context) {
	n, err := h.service.CountActive(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

// @Summary      Update a gym class
// @Tags         gym-classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Class ID"
// @Param        request body gymclass.ClassRequest true "Class payload"
// @Success      200 {object} gymclass.GymClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /gym-classes/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req ClassRequest
	if !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

// @Summary      Change class status
// @Tags         gym-classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Class ID"
// @Param        request body gymclass.StatusRequest true "New status"
// @Success      200 {object} gymclass.GymClass
// @Failure      404 {object} api.ErrorResponse
// @Router       /gym-classes/{id}/status [put]
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
	g, err := h.service.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

// @Summary      Set enrollment count
// @Description  Admin correction of the enrollment counter. Status is recomputed.
// @Tags         gym-classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Class ID"
// @Param        request body gymclass.EnrollmentRequest true "Enrollment"
// @Success      200 {object} gymclass.GymClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /gym-classes/{id}/enrollment [put]
func (h *Handler) SetEnrollment(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req EnrollmentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	g, err := h.service.SetEnrollment(c.Request.Context(), id, req.CurrentEnrollment)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

// @Summary      Delete a gym class
// @Tags         gym-classes
// @Security     BearerAuth
// @Param        id path int true "Class ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /gym-classes/{id} [delete]
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
