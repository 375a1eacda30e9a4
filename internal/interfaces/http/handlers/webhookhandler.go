package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	lifecycleUsecases "hardhat/internal/application/lifecycle/usecases"
	"hardhat/internal/domain/account"
	"hardhat/internal/shared/logger"
	"hardhat/internal/shared/utils"
)

// WebhookHandler receives payment processor callbacks. Deliveries are
// at-least-once; the use case is idempotent on the session ID.
type WebhookHandler struct {
	completeCheckoutUC *lifecycleUsecases.CompleteCheckoutUseCase
	logger             logger.Interface
}

func NewWebhookHandler(completeCheckoutUC *lifecycleUsecases.CompleteCheckoutUseCase) *WebhookHandler {
	return &WebhookHandler{
		completeCheckoutUC: completeCheckoutUC,
		logger:             logger.NewLogger(),
	}
}

type CheckoutCompletedRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	AccountID    string `json:"account_id" binding:"required"`
	PlanSlug     string `json:"plan_slug" binding:"required"`
	BillingCycle string `json:"billing_cycle" binding:"required,oneof=monthly yearly"`
}

// CheckoutCompleted handles POST /webhooks/checkout
func (h *WebhookHandler) CheckoutCompleted(c *gin.Context) {
	var req CheckoutCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid checkout webhook payload", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	_, err := h.completeCheckoutUC.Execute(
		c.Request.Context(),
		req.AccountID,
		req.PlanSlug,
		account.BillingCycle(req.BillingCycle),
		req.SessionID,
	)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "checkout processed", nil)
}
