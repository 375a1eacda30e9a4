package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	catalogUsecases "hardhat/internal/application/catalog/usecases"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
	"hardhat/internal/shared/utils"
)

// AdminPlanHandler serves catalog administration: publishing plan versions
// and retiring plans from offer.
type AdminPlanHandler struct {
	publishPlanUC *catalogUsecases.PublishPlanUseCase
	retirePlanUC  *catalogUsecases.RetirePlanUseCase
	logger        logger.Interface
}

func NewAdminPlanHandler(
	publishPlanUC *catalogUsecases.PublishPlanUseCase,
	retirePlanUC *catalogUsecases.RetirePlanUseCase,
) *AdminPlanHandler {
	return &AdminPlanHandler{
		publishPlanUC: publishPlanUC,
		retirePlanUC:  retirePlanUC,
		logger:        logger.NewLogger(),
	}
}

type QuotaInput struct {
	Limit     int64 `json:"limit" binding:"min=0"`
	Unlimited bool  `json:"unlimited"`
}

type PublishPlanRequest struct {
	Slug          string                `json:"slug" binding:"required,max=100"`
	Name          string                `json:"name" binding:"required,max=100"`
	Description   string                `json:"description"`
	TierRank      int                   `json:"tier_rank" binding:"min=0"`
	TrialEligible bool                  `json:"trial_eligible"`
	PriceMonthly  uint64                `json:"price_monthly_cents"`
	PriceYearly   uint64                `json:"price_yearly_cents"`
	Quotas        map[string]QuotaInput `json:"quotas" binding:"required"`
}

// PublishPlan handles POST /admin/plans
func (h *AdminPlanHandler) PublishPlan(c *gin.Context) {
	var req PublishPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for publish plan", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	quotas := make(map[catalog.FeatureKey]catalog.Quota, len(req.Quotas))
	for key, q := range req.Quotas {
		fk, ok := catalog.ParseFeatureKey(key)
		if !ok {
			utils.ErrorResponse(c, http.StatusBadRequest, "unknown feature key: "+key)
			return
		}
		if q.Unlimited {
			quotas[fk] = catalog.UnlimitedQuota()
		} else {
			quotas[fk] = catalog.LimitedQuota(q.Limit)
		}
	}

	plan, err := h.publishPlanUC.Execute(c.Request.Context(), catalogUsecases.PublishPlanInput{
		Slug:          req.Slug,
		Name:          req.Name,
		Description:   req.Description,
		TierRank:      req.TierRank,
		TrialEligible: req.TrialEligible,
		PriceMonthly:  req.PriceMonthly,
		PriceYearly:   req.PriceYearly,
		Quotas:        quotas,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "plan published", gin.H{
		"id":      plan.SID(),
		"slug":    plan.Slug(),
		"version": plan.Version(),
	})
}

// RetirePlan handles POST /admin/plans/:slug/retire
func (h *AdminPlanHandler) RetirePlan(c *gin.Context) {
	slug := c.Param("slug")

	if err := h.retirePlanUC.Execute(c.Request.Context(), slug); err != nil {
		if errors.Is(err, catalog.ErrPlanNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "plan not found")
			return
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "plan retired", nil)
}

// bindingErrorMessage flattens validator failures into a field-level message.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "invalid request body: " + strings.Join(fields, ", ")
}
