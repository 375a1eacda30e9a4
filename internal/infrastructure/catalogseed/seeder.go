// Package catalogseed bootstraps the plan catalog from a YAML file so a
// fresh deployment always has the default and trial plans available.
package catalogseed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/id"
	"hardhat/internal/shared/logger"
)

type seedQuota struct {
	Limit     int64 `yaml:"limit"`
	Unlimited bool  `yaml:"unlimited"`
}

type seedPlan struct {
	Slug          string               `yaml:"slug"`
	Name          string               `yaml:"name"`
	Description   string               `yaml:"description"`
	TierRank      int                  `yaml:"tier_rank"`
	TrialEligible bool                 `yaml:"trial_eligible"`
	PriceMonthly  uint64               `yaml:"price_monthly_cents"`
	PriceYearly   uint64               `yaml:"price_yearly_cents"`
	Quotas        map[string]seedQuota `yaml:"quotas"`
}

type seedFile struct {
	Plans []seedPlan `yaml:"plans"`
}

// Seeder loads the catalog seed file and creates any plans not yet present.
// Existing slugs are left untouched; changing a live plan goes through the
// admin publish path, not the seed.
type Seeder struct {
	planRepo catalog.PlanRepository
	logger   logger.Interface
}

func NewSeeder(planRepo catalog.PlanRepository, logger logger.Interface) *Seeder {
	return &Seeder{planRepo: planRepo, logger: logger}
}

func (s *Seeder) Seed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse catalog seed file: %w", err)
	}

	created := 0
	for _, sp := range file.Plans {
		existing, err := s.planRepo.GetBySlug(ctx, sp.Slug)
		if err != nil {
			return fmt.Errorf("failed to check plan %q: %w", sp.Slug, err)
		}
		if existing != nil {
			s.logger.Debugw("seed plan already present, skipping", "slug", sp.Slug)
			continue
		}

		plan, err := s.toPlan(sp)
		if err != nil {
			return fmt.Errorf("invalid seed plan %q: %w", sp.Slug, err)
		}
		if err := s.planRepo.Create(ctx, plan); err != nil {
			return fmt.Errorf("failed to create seed plan %q: %w", sp.Slug, err)
		}
		created++
	}

	s.logger.Infow("catalog seed applied", "plans", len(file.Plans), "created", created)
	return nil
}

func (s *Seeder) toPlan(sp seedPlan) (*catalog.Plan, error) {
	quotas := make(map[catalog.FeatureKey]catalog.Quota, len(sp.Quotas))
	for key, q := range sp.Quotas {
		fk, ok := catalog.ParseFeatureKey(key)
		if !ok {
			return nil, fmt.Errorf("unknown feature key %q", key)
		}
		if q.Unlimited {
			quotas[fk] = catalog.UnlimitedQuota()
		} else {
			quotas[fk] = catalog.LimitedQuota(q.Limit)
		}
	}

	sid, err := id.GenerateWithPrefix(id.PrefixPlan, id.DefaultLength)
	if err != nil {
		return nil, err
	}

	plan, err := catalog.NewPlan(sid, sp.Slug, sp.Name, sp.Description, sp.TierRank, quotas)
	if err != nil {
		return nil, err
	}
	plan.SetTrialEligible(sp.TrialEligible)
	plan.SetPricing(sp.PriceMonthly, sp.PriceYearly)
	return plan, nil
}
