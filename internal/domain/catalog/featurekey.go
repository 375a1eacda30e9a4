package catalog

// FeatureKey identifies an independently gateable capability of the product.
// The set is closed and stable across releases; new features are additive and
// existing keys must never be renamed, since usage records reference them.
type FeatureKey string

const (
	FeatureEstimateBasic      FeatureKey = "estimate_basic"
	FeatureContractGeneration FeatureKey = "contract_generation"
	FeaturePropertyLookup     FeatureKey = "property_lookup"
	FeaturePermitAdvisory     FeatureKey = "permit_advisory"
	FeatureEstimateAI         FeatureKey = "estimate_ai"
	FeatureProjectCreation    FeatureKey = "project_creation"
)

var allFeatures = []FeatureKey{
	FeatureEstimateBasic,
	FeatureContractGeneration,
	FeaturePropertyLookup,
	FeaturePermitAdvisory,
	FeatureEstimateAI,
	FeatureProjectCreation,
}

// AllFeatures returns the closed set of feature keys.
func AllFeatures() []FeatureKey {
	out := make([]FeatureKey, len(allFeatures))
	copy(out, allFeatures)
	return out
}

// ParseFeatureKey validates a raw string against the closed feature set.
func ParseFeatureKey(raw string) (FeatureKey, bool) {
	fk := FeatureKey(raw)
	for _, known := range allFeatures {
		if fk == known {
			return fk, true
		}
	}
	return "", false
}

func (f FeatureKey) String() string {
	return string(f)
}
