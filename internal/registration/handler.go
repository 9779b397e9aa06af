package registration

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gymhub/internal/api"
	"gymhub/internal/apperror"
	"gymhub/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

func respondList[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) withID(c *gin.Context, fn func(id int) (*Registration, error)) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	reg, err := fn(id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reg)
}

// @Summary      Register a member for a class
// @Tags         class-registrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body registration.RegisterRequest true "Registration payload"
// @Success      201 {object} registration.Registration
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /class-registrations/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	caller, ok := auth.MustCaller(c)
	if !ok {
		return
	}

	reg, err := h.service.Register(c.Request.Context(), caller, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reg)
}

// @Summary      Cancel a registration
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Registration ID"
// @Success      200 {object} registration.Registration
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /class-registrations/{id}/cancel [put]
func (h *Handler) Cancel(c *gin.Context) {
	caller, ok := auth.MustCaller(c)
	if !ok {
		return
	}

	h.withID(c, func(id int) (*Registration, error) {
		return h.service.Cancel(c.Request.Context(), caller, id)
	})
}

// @Summary      Change registration status
// @Tags         class-registrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Registration ID"
// @Param        request body registration.StatusRequest true "New status"
// @Success      200 {object} registration.Registration
// @Failure      409 {object} api.ErrorResponse
// @Router       /class-registrations/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if !api.BindJSON(c, &req) {
		return
	}
	status, _ := ParseStatus(req.Status)

	h.withID(c, func(id int) (*Registration, error) {
		return h.service.UpdateStatus(c.Request.Context(), id, status)
	})
}

// @Summary      Mark attendance
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Registration ID"
// @Success      200 {object} registration.Registration
// @Router       /class-registrations/{id}/attend [put]
func (h *Handler) MarkAttendance(c *gin.Context) {
	h.withID(c, func(id int) (*Registration, error) {
		return h.service.MarkAttendance(c.Request.Context(), id)
	})
}

// @Summary      Mark no-show
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Registration ID"
// @Success      200 {object} registration.Registration
// @Router       /class-registrations/{id}/no-show [put]
func (h *Handler) MarkNoShow(c *gin.Context) {
	h.withID(c, func(id int) (*Registration, error) {
		return h.service.MarkNoShow(c.Request.Context(), id)
	})
}

// @Summary      Delete a registration
// @Tags         class-registrations
// @Security     BearerAuth
// @Param        id path int true "Registration ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /class-registrations/{id} [delete]
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

// @Summary      Get a registration
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Registration ID"
// @Success      200 {object} registration.Registration
// @Failure      404 {object} api.ErrorResponse
// @Router       /class-registrations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	h.withID(c, func(id int) (*Registration, error) {
		return h.service.GetByID(c.Request.Context(), id)
	})
}

// @Summary      List registrations
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} registration.Registration
// @Router       /class-registrations [get]
func (h *Handler) List(c *gin.Context) {
	regs, err := h.service.List(c.Request.Context())
	respondList(c, regs, err)
}

// @Summary      Registrations of a member
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        memberId path int true "Member ID"
// @Success      200 {array} registration.Registration
// @Router       /class-registrations/member/{memberId} [get]
func (h *Handler) ListByMember(c *gin.Context) {
	memberID, err := api.ParseID(c, "memberId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	regs, err := h.service.ListByMember(c.Request.Context(), memberID)
	respondList(c, regs, err)
}

// @Summary      Upcoming registrations of a member
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        memberId path int true "Member ID"
// @Success      200 {array} registration.RegistrationWithClass
// @Router       /class-registrations/member/{memberId}/upcoming [get]
func (h *Handler) ListUpcomingByMember(c *gin.Context) {
	memberID, err := api.ParseID(c, "memberId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	regs, err := h.service.ListUpcomingByMember(c.Request.Context(), memberID)
	respondList(c, regs, err)
}

// @Summary      Attended classes count of a member
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        memberId path int true "Member ID"
// @Success      200 {object} api.CountResponse
// @Router       /class-registrations/member/{memberId}/attended-count [get]
func (h *Handler) CountAttendedByMember(c *gin.Context) {
	memberID, err := api.ParseID(c, "memberId")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	n, err := h.service.CountAttendedByMember(c.Request.Context(), memberID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

// @Summary      Registrations of a class
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        classId path int true "Class ID"
// @Success      200 {array} registration.Registration
// @Router       /class-registrations/class/{classId} [get]
func (h *Handler) ListByClass(c *gin.Context) {
	classID, err := api.ParseID(c, "classId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	regs, err := h.service.ListByClass(c.Request.Context(), classID)
	respondList(c, regs, err)
}

// @Summary      Active registrations count of a class
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        classId path int true "Class ID"
// @Success      200 {object} api.CountResponse
// @Router       /class-registrations/class/{classId}/count [get]
func (h *Handler) CountRegistered(c *gin.Context) {
	classID, err := api.ParseID(c, "classId")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	n, err := h.service.CountRegistered(c.Request.Context(), classID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

// @Summary      Registrations by status
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        status path string true "REGISTERED, ATTENDED, CANCELLED or NO_SHOW"
// @Success      200 {array} registration.Registration
// @Failure      400 {object} api.ErrorResponse
// @Router       /class-registrations/status/{status} [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status, ok := ParseStatus(c.Param("status"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid registration status"))
		return
	}
	regs, err := h.service.ListByStatus(c.Request.Context(), status)
	respondList(c, regs, err)
}

// @Summary      Registrations in a date range
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "RFC3339 start"
// @Param        end query string true "RFC3339 end"
// @Success      200 {array} registration.Registration
// @Failure      400 {object} api.ErrorResponse
// @Router       /class-registrations/date-range [get]
func (h *Handler) ListByDateRange(c *gin.Context) {
	start, end, err := api.ParseTimeRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	regs, err := h.service.ListByDateRange(c.Request.Context(), start, end)
	respondList(c, regs, err)
}

// IsRegistered answers for the member in the query. Members may only ask about themselves.
//
// @Summary      Is the member registered
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        member_id query int true "Member ID"
// @Param        gym_class_id query int true "Class ID"
// @Success      200 {object} api.BoolResponse
// @Failure      403 {object} api.ErrorResponse
// @Router       /class-registrations/is-registered [get]
func (h *Handler) IsRegistered(c *gin.Context) {
	memberID, err := api.QueryID(c, "member_id")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	classID, err := api.QueryID(c, "gym_class_id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	caller, ok := auth.MustCaller(c)
	if !ok {
		return
	}

	registered, err := h.service.IsRegistered(c.Request.Context(), caller, memberID, classID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.BoolResponse{Value: registered})
}

// @Summary      Registration analytics
// @Tags         class-registrations
// @Produce      json
// @Security     BearerAuth
// @Param        group_by query string false "day or class"
// @Param        from query string true "RFC3339 from"
// @Param        to query string true "RFC3339 to"
// @Success      200 {array} registration.StatsByDay
// @Failure      400 {object} api.ErrorResponse
// @Router       /class-registrations/analytics [get]
func (h *Handler) Analytics(c *gin.Context) {
	from, err := api.ParseTimeQuery(c, "from")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	to, err := api.ParseTimeQuery(c, "to")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if to.Before(from) {
		api.RespondError(c, apperror.Invalid("to must not be before from"))
		return
	}

	stats, err := h.service.Analytics(c.Request.Context(), c.DefaultQuery("group_by", GroupByDay), from, to)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
