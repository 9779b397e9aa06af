package session

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

func respondList(c *gin.Context, sessions []Session, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

func respond(c *gin.Context, status int, s *Session, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(status, s)
}

func respondCount(c *gin.Context, n int64, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

// @Summary      Schedule a training session
// @Tags         training-sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body session.SessionRequest true "Session payload"
// @Success      201 {object} session.Session
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /training-sessions [post]
func (h *Handler) Create(c *gin.Context) {
	var req SessionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.Create(c.Request.Context(), req)
	respond(c, http.StatusCreated, s, err)
}

// @Summary      Book a session as a member
// @Tags         training-sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body session.SessionRequest true "Session payload, member_id must be the caller"
// @Success      201 {object} session.Session
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /training-sessions/book [post]
func (h *Handler) Book(c *gin.Context) {
	var req SessionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	caller, ok := auth.MustCaller(c)
	if !ok {
		return
	}

	s, err := h.service.Book(c.Request.Context(), caller, req)
	respond(c, http.StatusCreated, s, err)
}

// @Summary      Get a training session
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      200 {object} session.Session
// @Failure      404 {object} api.ErrorResponse
// @Router       /training-sessions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), id)
	respond(c, http.StatusOK, s, err)
}

// @Summary      List training sessions
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} session.Session
// @Router       /training-sessions [get]
func (h *Handler) List(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context())
	respondList(c, sessions, err)
}

// @Summary      Upcoming scheduled sessions
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} session.Session
// @Router       /training-sessions/upcoming [get]
func (h *Handler) ListUpcoming(c *gin.Context) {
	sessions, err := h.service.ListUpcoming(c.Request.Context())
	respondList(c, sessions, err)
}

// @Summary      Sessions of a trainer
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        trainerId path int true "Trainer ID"
// @Success      200 {array} session.Session
// @Router       /training-sessions/trainer/{trainerId} [get]
func (h *Handler) ListByTrainer(c *gin.Context) {
	trainerID, err := api.ParseID(c, "trainerId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	sessions, err := h.service.ListByTrainer(c.Request.Context(), trainerID)
	respondList(c, sessions, err)
}

// @Summary      Upcoming sessions of a trainer
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        trainerId path int true "Trainer ID"
// @Success      200 {array} session.Session
// @Router       /training-sessions/trainer/{trainerId}/upcoming [get]
func (h *Handler) ListUpcomingByTrainer(c *gin.Context) {
	trainerID, err := api.ParseID(c, "trainerId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	sessions, err := h.service.ListUpcomingByTrainer(c.Request.Context(), trainerID)
	respondList(c, sessions, err)
}

// @Summary      Completed sessions count of a trainer
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        trainerId path int true "Trainer ID"
// @Success      200 {object} api.CountResponse
// @Router       /training-sessions/trainer/{trainerId}/completed-count [get]
func (h *Handler) CountCompletedByTrainer(c *gin.Context) {
	trainerID, err := api.ParseID(c, "trainerId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	n, err := h.service.CountCompletedByTrainer(c.Request.Context(), trainerID)
	respondCount(c, n, err)
}

// @Summary      Sessions of a member
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        memberId path int true "Member ID"
// @Success      200 {array} session.Session
// @Router       /training-sessions/member/{memberId} [get]
func (h *Handler) ListByMember(c *gin.Context) {
	memberID, err := api.ParseID(c, "memberId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	sessions, err := h.service.ListByMember(c.Request.Context(), memberID)
	respondList(c, sessions, err)
}

// @Summary      Upcoming sessions of a member
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        memberId path int true "Member ID"
// @Success      200 {array} session.Session
// @Router       /training-sessions/member/{memberId}/upcoming [get]
func (h *Handler) ListUpcomingByMember(c *gin.Context) {
	memberID, err := api.ParseID(c, "memberId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	sessions, err := h.service.ListUpcomingByMember(c.Request.Context(), memberID)
	respondList(c, sessions, err)
}

// @Summary      Completed sessions count of a member
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        memberId path int true "Member ID"
// @Success      200 {object} api.CountResponse
// @Router       /training-sessions/member/{memberId}/completed-count [get]
func (h *Handler) CountCompletedByMember(c *gin.Context) {
	memberID, err := api.ParseID(c, "memberId")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	n, err := h.service.CountCompletedByMember(c.Request.Context(), memberID)
	respondCount(c, n, err)
}

// @Summary      Sessions by status
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        status path string true "Session status"
// @Success      200 {array} session.Session
// @Failure      400 {object} api.ErrorResponse
// @Router       /training-sessions/status/{status} [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status, ok := ParseStatus(c.Param("status"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid session status"))
		return
	}
	sessions, err := h.service.ListByStatus(c.Request.Context(), status)
	respondList(c, sessions, err)
}

// @Summary      Scheduled sessions by type
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        type path string true "Session type"
// @Success      200 {array} session.Session
// @Failure      400 {object} api.ErrorResponse
// @Router       /training-sessions/type/{type}/scheduled [get]
func (h *Handler) ListScheduledByType(c *gin.Context) {
	t, ok := ParseType(c.Param("type"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid session type"))
		return
	}
	sessions, err := h.service.ListScheduledByType(c.Request.Context(), t)
	respondList(c, sessions, err)
}

// @Summary      Sessions in a date range
// @Tags         training-sessions
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "RFC3339 start"
// @Param        end query string true "RFC3339 end"
// @Success      200 {array} session.Session
// @Failure      400 {object} api.ErrorResponse
// @Router       /training-sessions/date-range [get]
func (h *Handler) ListByDateRange(c *gin.Context) {
	start, end, err := api.ParseTimeRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	sessions, err := h.service.ListByDateRange(c.Request.Context(), start, end)
	respondList(c, sessions, err)
}

// @Summary      Update a training session
// @Tags         training-sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Param        request body session.UpdateRequest true "Session payload"
// @Success      200 {object} session.Session
// @Failure      409 {object} api.ErrorResponse
// @Router       /training-sessions/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req UpdateRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.Update(c.Request.Context(), id, req)
	respond(c, http.StatusOK, s, err)
}

// @Summary      Change session status
// @Tags         training-sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Param        request body session.StatusRequest true "New status"
// @Success      200 {object} session.Session
// @Router       /training-sessions/{id}/status [put]
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

	s, err := h.service.UpdateStatus(c.Request.Context(), id, status)
	respond(c, http.StatusOK, s, err)
}

// @Summary      Reschedule a session
// @Tags         training-sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Param        request body session.RescheduleRequest true "New date"
// @Success      200 {object} session.Session
// @Failure      409 {object} api.ErrorResponse
// @Router       /training-sessions/{id}/reschedule [put]
func (h *Handler) Reschedule(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req RescheduleRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.Reschedule(c.Request.Context(), id, req.ScheduledDate)
	respond(c, http.StatusOK, s, err)
}

// @Summary      Delete a session
// @Tags         training-sessions
// @Security     BearerAuth
// @Param        id path int true "Session ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /training-sessions/{id} [delete]
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
