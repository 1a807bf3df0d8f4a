package domain

import "context"

// RuleSetRepository persists the singleton pricing rule set.
type RuleSetRepository interface {
	// Current returns the live rule set, seeding the defaults if none exists.
	Current(ctx context.Context) (PricingRuleSet, error)

	// Replace swaps in a new rule set and bumps its version.
	Replace(ctx context.Context, rs PricingRuleSet) (PricingRuleSet, error)
}
