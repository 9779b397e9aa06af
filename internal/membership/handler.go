package membership

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

func respondList(c *gin.Context, ms []Membership, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if ms == nil {
		ms = []Membership{}
	}
	c.JSON(http.StatusOK, ms)
}

func respond(c *gin.Context, status int, m *Membership, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(status, m)
}

func userIDParam(c *gin.Context) (int, bool) {
	id, err := api.ParseID(c, "userId")
	if err != nil {
		api.RespondError(c, err)
		return 0, false
	}
	return id, true
}

// @Summary      Membership plans
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} membership.Plan
// @Router       /memberships/plans [get]
func (h *Handler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Plans())
}

// @Summary      Create a membership
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body membership.MembershipRequest true "Membership payload"
// @Success      201 {object} membership.Membership
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /memberships [post]
func (h *Handler) Create(c *gin.Context) {
	var req MembershipRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Create(c.Request.Context(), req)
	respond(c, http.StatusCreated, m, err)
}

// @Summary      Get a membership
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Success      200 {object} membership.Membership
// @Failure      404 {object} api.ErrorResponse
// @Router       /memberships/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), id)
	respond(c, http.StatusOK, m, err)
}

// @Summary      List memberships
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} membership.Membership
// @Router       /memberships [get]
func (h *Handler) List(c *gin.Context) {
	ms, err := h.service.List(c.Request.Context())
	respondList(c, ms, err)
}

// @Summary      Memberships of a user
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200 {array} membership.Membership
// @Router       /memberships/user/{userId} [get]
func (h *Handler) ListByUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	ms, err := h.service.ListByUser(c.Request.Context(), userID)
	respondList(c, ms, err)
}

// @Summary      Active memberships of a user
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200 {array} membership.Membership
// @Router       /memberships/user/{userId}/active [get]
func (h *Handler) ListActiveByUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	ms, err := h.service.ListActiveByUser(c.Request.Context(), userID)
	respondList(c, ms, err)
}

// @Summary      Does the user hold an active membership
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200 {object} api.BoolResponse
// @Router       /memberships/user/{userId}/has-active [get]
func (h *Handler) HasActive(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	active, err := h.service.HasActive(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.BoolResponse{Value: active})
}

// @Summary      Memberships by status
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        status path string true "ACTIVE, EXPIRED, SUSPENDED or CANCELLED"
// @Success      200 {array} membership.Membership
// @Failure      400 {object} api.ErrorResponse
// @Router       /memberships/status/{status} [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status, ok := ParseStatus(c.Param("status"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid membership status"))
		return
	}
	ms, err := h.service.ListByStatus(c.Request.Context(), status)
	respondList(c, ms, err)
}

// @Summary      Memberships by type
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        type path string true "Membership type"
// @Success      200 {array} membership.Membership
// @Failure      400 {object} api.ErrorResponse
// @Router       /memberships/type/{type} [get]
func (h *Handler) ListByType(c *gin.Context) {
	t, ok := ParseType(c.Param("type"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid membership type"))
		return
	}
	ms, err := h.service.ListByType(c.Request.Context(), t)
	respondList(c, ms, err)
}

// @Summary      Memberships expiring in a window
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "RFC3339 start"
// @Param        end query string true "RFC3339 end"
// @Success      200 {array} membership.Membership
// @Failure      400 {object} api.ErrorResponse
// @Router       /memberships/expiring [get]
func (h *Handler) ListExpiring(c *gin.Context) {
	start, end, err := api.ParseTimeRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	ms, err := h.service.ListExpiringBetween(c.Request.Context(), start, end)
	respondList(c, ms, err)
}

// @Summary      Active memberships past their end date
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} membership.Membership
// @Router       /memberships/expired [get]
func (h *Handler) ListExpired(c *gin.Context) {
	ms, err := h.service.ListExpired(c.Request.Context())
	respondList(c, ms, err)
}

// @Summary      Active memberships count
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.CountResponse
// @Router       /memberships/count/active [get]
func (h *Handler) CountActive(c *gin.Context) {
	n, err := h.service.CountActive(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

// @Summary      Update a membership
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Param        request body membership.MembershipRequest true "Membership payload"
// @Success      200 {object} membership.Membership
// @Router       /memberships/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req MembershipRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Update(c.Request.Context(), id, req)
	respond(c, http.StatusOK, m, err)
}

// @Summary      Change membership status
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Param        request body membership.StatusRequest true "New status"
// @Success      200 {object} membership.Membership
// @Failure      409 {object} api.ErrorResponse
// @Router       /memberships/{id}/status [put]
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

	m, err := h.service.UpdateStatus(c.Request.Context(), id, status)
	respond(c, http.StatusOK, m, err)
}

// @Summary      Renew a membership
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Param        request body membership.RenewRequest true "New end date"
// @Success      200 {object} membership.Membership
// @Failure      409 {object} api.ErrorResponse
// @Router       /memberships/{id}/renew [put]
func (h *Handler) Renew(c *gin.Context) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req RenewRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Renew(c.Request.Context(), id, req.EndDate)
	respond(c, http.StatusOK, m, err)
}

// @Summary      Expire overdue memberships
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} membership.ExpireResponse
// @Router       /memberships/expire-overdue [post]
func (h *Handler) ExpireOverdue(c *gin.Context) {
	n, err := h.service.ExpireOverdue(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExpireResponse{Expired: n})
}

// @Summary      Delete a membership
// @Tags         memberships
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /memberships/{id} [delete]
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
