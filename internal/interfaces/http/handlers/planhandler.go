package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogUsecases "hardhat/internal/application/catalog/usecases"
	"hardhat/internal/shared/logger"
	"hardhat/internal/shared/utils"
)

// PlanHandler serves the public pricing surface.
type PlanHandler struct {
	listPlansUC *catalogUsecases.ListPlansUseCase
	logger      logger.Interface
}

func NewPlanHandler(listPlansUC *catalogUsecases.ListPlansUseCase) *PlanHandler {
	return &PlanHandler{
		listPlansUC: listPlansUC,
		logger:      logger.NewLogger(),
	}
}

// ListPlans handles GET /plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.listPlansUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", plans)
}
