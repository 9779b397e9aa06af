package payment

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

func respondList(c *gin.Context, payments []Payment, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func respond(c *gin.Context, status int, p *Payment, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(status, p)
}

func respondCount(c *gin.Context, n int64, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

func respondAmount(c *gin.Context, cents int64, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.AmountResponse{AmountCents: cents})
}

func (h *Handler) withID(c *gin.Context, fn func(id int) (*Payment, error)) {
	id, err := api.ParseID(c, "id")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	p, err := fn(id)
	respond(c, http.StatusOK, p, err)
}

func userIDParam(c *gin.Context) (int, bool) {
	id, err := api.ParseID(c, "userId")
	if err != nil {
		api.RespondError(c, err)
		return 0, false
	}
	return id, true
}

// @Summary      Record a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body payment.PaymentRequest true "Payment payload"
// @Success      201 {object} payment.Payment
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /payments [post]
func (h *Handler) Create(c *gin.Context) {
	var req PaymentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), req)
	respond(c, http.StatusCreated, p, err)
}

// CreateQuick serves the membership, class and training convenience endpoints.
//
// @Summary      Record a typed payment with default description and due date
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body payment.QuickPaymentRequest true "Payer, amount and method"
// @Success      201 {object} payment.Payment
// @Router       /payments/membership [post]
// @Router       /payments/class [post]
// @Router       /payments/training [post]
func (h *Handler) CreateQuick(t Type) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuickPaymentRequest
		if !api.BindJSON(c, &req) {
			return
		}

		ctx := c.Request.Context()
		var (
			p   *Payment
			err error
		)
		switch t {
		case TypeMembershipFee:
			p, err = h.service.CreateMembershipPayment(ctx, req)
		case TypeClassFee:
			p, err = h.service.CreateClassPayment(ctx, req)
		default:
			p, err = h.service.CreateTrainingPayment(ctx, req)
		}
		respond(c, http.StatusCreated, p, err)
	}
}

// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} payment.Payment
// @Router       /payments [get]
func (h *Handler) List(c *gin.Context) {
	payments, err := h.service.List(c.Request.Context())
	respondList(c, payments, err)
}

// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Payment ID"
// @Success      200 {object} payment.Payment
// @Failure      404 {object} api.ErrorResponse
// @Router       /payments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	h.withID(c, func(id int) (*Payment, error) {
		return h.service.GetByID(c.Request.Context(), id)
	})
}

// @Summary      Update a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Payment ID"
// @Param        request body payment.PaymentRequest true "Payment payload"
// @Success      200 {object} payment.Payment
// @Router       /payments/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req PaymentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	h.withID(c, func(id int) (*Payment, error) {
		return h.service.Update(c.Request.Context(), id, req)
	})
}

// @Summary      Complete a pending payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Payment ID"
// @Success      200 {object} payment.Payment
// @Failure      409 {object} api.ErrorResponse
// @Router       /payments/{id}/process [put]
func (h *Handler) Process(c *gin.Context) {
	h.withID(c, func(id int) (*Payment, error) {
		return h.service.Process(c.Request.Context(), id)
	})
}

// @Summary      Refund a completed payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Payment ID"
// @Param        request body payment.RefundRequest true "Refund notes"
// @Success      200 {object} payment.Payment
// @Failure      409 {object} api.ErrorResponse
// @Router       /payments/{id}/refund [put]
func (h *Handler) Refund(c *gin.Context) {
	var req RefundRequest
	if !api.BindJSON(c, &req) {
		return
	}

	h.withID(c, func(id int) (*Payment, error) {
		return h.service.Refund(c.Request.Context(), id, req.Notes)
	})
}

// @Summary      Cancel a pending payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Payment ID"
// @Success      200 {object} payment.Payment
// @Failure      409 {object} api.ErrorResponse
// @Router       /payments/{id}/cancel [put]
func (h *Handler) Cancel(c *gin.Context) {
	h.withID(c, func(id int) (*Payment, error) {
		return h.service.Cancel(c.Request.Context(), id)
	})
}

// @Summary      Delete a payment
// @Tags         payments
// @Security     BearerAuth
// @Param        id path int true "Payment ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /payments/{id} [delete]
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

// @Summary      Payments by status
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        status path string true "PENDING, COMPLETED, CANCELLED or REFUNDED"
// @Success      200 {array} payment.Payment
// @Router       /payments/status/{status} [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status, ok := ParseStatus(c.Param("status"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid payment status"))
		return
	}
	payments, err := h.service.ListByStatus(c.Request.Context(), status)
	respondList(c, payments, err)
}

// @Summary      Payments by type
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        type path string true "MEMBERSHIP_FEE, CLASS_FEE or TRAINING_SESSION"
// @Success      200 {array} payment.Payment
// @Router       /payments/type/{type} [get]
func (h *Handler) ListByType(c *gin.Context) {
	t, ok := ParseType(c.Param("type"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid payment type"))
		return
	}
	payments, err := h.service.ListByType(c.Request.Context(), t)
	respondList(c, payments, err)
}

// @Summary      Payments by method
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        method path string true "Payment method"
// @Success      200 {array} payment.Payment
// @Router       /payments/method/{method} [get]
func (h *Handler) ListByMethod(c *gin.Context) {
	m, ok := ParseMethod(c.Param("method"))
	if !ok {
		api.RespondError(c, apperror.Invalid("Invalid payment method"))
		return
	}
	payments, err := h.service.ListByMethod(c.Request.Context(), m)
	respondList(c, payments, err)
}

// @Summary      Payments made in a date range
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "RFC3339 start"
// @Param        end query string true "RFC3339 end"
// @Success      200 {array} payment.Payment
// @Router       /payments/date-range [get]
func (h *Handler) ListByDateRange(c *gin.Context) {
	start, end, err := api.ParseTimeRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	payments, err := h.service.ListByDateRange(c.Request.Context(), start, end)
	respondList(c, payments, err)
}

// @Summary      Pending payments past their due date
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} payment.Payment
// @Router       /payments/overdue [get]
func (h *Handler) ListOverdue(c *gin.Context) {
	payments, err := h.service.ListOverdue(c.Request.Context())
	respondList(c, payments, err)
}

// @Summary      Completed payments of at least min cents
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        min query int true "Minimum amount in cents"
// @Success      200 {array} payment.Payment
// @Router       /payments/high-value [get]
func (h *Handler) ListHighValue(c *gin.Context) {
	minCents, err := api.QueryInt64(c, "min")
	if err != nil {
		api.RespondError(c, err)
		return
	}
	payments, err := h.service.ListHighValue(c.Request.Context(), minCents)
	respondList(c, payments, err)
}

// @Summary      Revenue from completed payments in a date range
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "RFC3339 start"
// @Param        end query string true "RFC3339 end"
// @Success      200 {object} api.AmountResponse
// @Router       /payments/revenue [get]
func (h *Handler) Revenue(c *gin.Context) {
	start, end, err := api.ParseTimeRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	cents, err := h.service.Revenue(c.Request.Context(), start, end)
	respondAmount(c, cents, err)
}

// @Summary      Count completed payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.CountResponse
// @Router       /payments/count/completed [get]
func (h *Handler) CountCompleted(c *gin.Context) {
	n, err := h.service.CountCompleted(c.Request.Context())
	respondCount(c, n, err)
}

// @Summary      Count pending payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.CountResponse
// @Router       /payments/count/pending [get]
func (h *Handler) CountPending(c *gin.Context) {
	n, err := h.service.CountPending(c.Request.Context())
	respondCount(c, n, err)
}

// @Summary      Payments of a user
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200 {array} payment.Payment
// @Router       /payments/user/{userId} [get]
func (h *Handler) ListByUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	payments, err := h.service.ListByUser(c.Request.Context(), userID)
	respondList(c, payments, err)
}

// @Summary      Completed payments of a user
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200 {array} payment.Payment
// @Router       /payments/user/{userId}/completed [get]
func (h *Handler) ListCompletedByUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	payments, err := h.service.ListCompletedByUser(c.Request.Context(), userID)
	respondList(c, payments, err)
}

// @Summary      Total paid by a user
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200 {object} api.AmountResponse
// @Router       /payments/user/{userId}/total [get]
func (h *Handler) TotalPaidByUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	cents, err := h.service.TotalPaidByUser(c.Request.Context(), userID)
	respondAmount(c, cents, err)
}

// @Summary      Payments of a user made in a date range
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Param        start query string true "RFC3339 start"
// @Param        end query string true "RFC3339 end"
// @Success      200 {array} payment.Payment
// @Router       /payments/user/{userId}/date-range [get]
func (h *Handler) ListByUserAndDateRange(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	start, end, err := api.ParseTimeRange(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	payments, err := h.service.ListByUserAndDateRange(c.Request.Context(), userID, start, end)
	respondList(c, payments, err)
}
