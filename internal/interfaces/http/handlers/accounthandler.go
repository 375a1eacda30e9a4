package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	entUsecases "hardhat/internal/application/entitlement/usecases"
	lifecycleUsecases "hardhat/internal/application/lifecycle/usecases"
	"hardhat/internal/domain/account"
	"hardhat/internal/interfaces/http/middleware"
	"hardhat/internal/shared/logger"
	"hardhat/internal/shared/utils"
)

// AccountHandler serves the authenticated account's plan state and trial
// activation.
type AccountHandler struct {
	getPlanStateUC  *entUsecases.GetPlanStateUseCase
	activateTrialUC *lifecycleUsecases.ActivateTrialUseCase
	logger          logger.Interface
}

func NewAccountHandler(
	getPlanStateUC *entUsecases.GetPlanStateUseCase,
	activateTrialUC *lifecycleUsecases.ActivateTrialUseCase,
) *AccountHandler {
	return &AccountHandler{
		getPlanStateUC:  getPlanStateUC,
		activateTrialUC: activateTrialUC,
		logger:          logger.NewLogger(),
	}
}

// GetPlanState handles GET /account/plan
func (h *AccountHandler) GetPlanState(c *gin.Context) {
	accountID := middleware.AccountID(c)

	state, err := h.getPlanStateUC.Execute(c.Request.Context(), accountID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", state)
}

// ActivateTrial handles POST /account/trial
func (h *AccountHandler) ActivateTrial(c *gin.Context) {
	accountID := middleware.AccountID(c)

	if _, err := h.activateTrialUC.Execute(c.Request.Context(), accountID); err != nil {
		if errors.Is(err, account.ErrTrialAlreadyUsed) {
			utils.ErrorResponse(c, http.StatusConflict, "trial has already been used")
			return
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	state, err := h.getPlanStateUC.Execute(c.Request.Context(), accountID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "trial activated", state)
}
