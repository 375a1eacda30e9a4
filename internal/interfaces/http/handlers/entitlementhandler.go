package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hardhat/internal/application/entitlement/dto"
	entUsecases "hardhat/internal/application/entitlement/usecases"
	upgradeUsecases "hardhat/internal/application/upgrade/usecases"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/interfaces/http/middleware"
	"hardhat/internal/shared/logger"
	"hardhat/internal/shared/utils"
)

// EntitlementHandler serves the hot path: feature gate checks and usage
// recording for the authenticated account.
type EntitlementHandler struct {
	canUseUC      *entUsecases.CanUseUseCase
	recordUsageUC *entUsecases.RecordUsageUseCase
	historyUC     *entUsecases.GetUsageHistoryUseCase
	upgradeUC     *upgradeUsecases.ResolveUpgradeUseCase
	logger        logger.Interface
}

func NewEntitlementHandler(
	canUseUC *entUsecases.CanUseUseCase,
	recordUsageUC *entUsecases.RecordUsageUseCase,
	historyUC *entUsecases.GetUsageHistoryUseCase,
	upgradeUC *upgradeUsecases.ResolveUpgradeUseCase,
) *EntitlementHandler {
	return &EntitlementHandler{
		canUseUC:      canUseUC,
		recordUsageUC: recordUsageUC,
		historyUC:     historyUC,
		upgradeUC:     upgradeUC,
		logger:        logger.NewLogger(),
	}
}

type RecordUsageRequest struct {
	Amount int64 `json:"amount" binding:"omitempty,min=1"`
}

// EntitlementResponse pairs the decision with the remediation to offer when
// the decision is a denial.
type EntitlementResponse struct {
	*dto.Decision
	Upgrade *dto.UpgradePath `json:"upgrade,omitempty"`
}

// CheckEntitlement handles GET /entitlements/:feature
func (h *EntitlementHandler) CheckEntitlement(c *gin.Context) {
	feature, ok := h.featureParam(c)
	if !ok {
		return
	}
	accountID := middleware.AccountID(c)

	decision, err := h.canUseUC.Execute(c.Request.Context(), accountID, feature)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := &EntitlementResponse{Decision: decision}
	if !decision.Allowed {
		// A denial without a way out is a dead end; resolve what to offer.
		path, err := h.upgradeUC.Execute(c.Request.Context(), accountID)
		if err != nil {
			h.logger.Warnw("failed to resolve upgrade path",
				"account_id", accountID,
				"feature", feature,
				"error", err,
			)
		} else {
			resp.Upgrade = path
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// RecordUsage handles POST /entitlements/:feature/usage
func (h *EntitlementHandler) RecordUsage(c *gin.Context) {
	feature, ok := h.featureParam(c)
	if !ok {
		return
	}
	accountID := middleware.AccountID(c)

	var req RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.logger.Warnw("invalid request body for record usage", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := h.recordUsageUC.Execute(c.Request.Context(), accountID, feature, req.Amount)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "usage recorded", decision)
}

// GetUsageHistory handles GET /entitlements/:feature/history
func (h *EntitlementHandler) GetUsageHistory(c *gin.Context) {
	feature, ok := h.featureParam(c)
	if !ok {
		return
	}
	accountID := middleware.AccountID(c)

	history, err := h.historyUC.Execute(c.Request.Context(), accountID, feature, 12)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", history)
}

func (h *EntitlementHandler) featureParam(c *gin.Context) (catalog.FeatureKey, bool) {
	feature, ok := catalog.ParseFeatureKey(c.Param("feature"))
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "unknown feature key")
		return "", false
	}
	return feature, true
}
