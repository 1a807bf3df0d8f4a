package infrastructure

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"printexpress/internal/service/pricing/domain"
)

// GormRuleSetRepository is the gorm implementation of RuleSetRepository.
// Current is on the hot path of every order submission, so concurrent reads
// are collapsed through singleflight.
type GormRuleSetRepository struct {
	db    *gorm.DB
	group singleflight.Group
}

// NewGormRuleSetRepository creates the repository.
func NewGormRuleSetRepository(db *gorm.DB) *GormRuleSetRepository {
	return &GormRuleSetRepository{db: db}
}

// Current loads the singleton rule set, seeding the shop defaults on first
// read (the original system upserted defaults the same way).
func (r *GormRuleSetRepository) Current(ctx context.Context) (domain.PricingRuleSet, error) {
	v, err, _ := r.group.Do("current", func() (interface{}, error) {
		var model RuleSetModel
		err := r.db.WithContext(ctx).First(&model, ruleSetRowID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.seed(ctx)
		}
		if err != nil {
			return domain.PricingRuleSet{}, err
		}
		return ToDomainRuleSet(&model)
	})
	if err != nil {
		return domain.PricingRuleSet{}, err
	}
	return v.(domain.PricingRuleSet), nil
}

func (r *GormRuleSetRepository) seed(ctx context.Context) (domain.PricingRuleSet, error) {
	rs := domain.DefaultRuleSet()
	raw, err := FromDomainRuleSet(rs)
	if err != nil {
		return domain.PricingRuleSet{}, err
	}
	model := RuleSetModel{ID: ruleSetRowID, Version: rs.Version, Rules: raw}
	// A concurrent seeder may win the insert; re-read in that case.
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
	if err != nil {
		return domain.PricingRuleSet{}, err
	}
	var stored RuleSetModel
	if err := r.db.WithContext(ctx).First(&stored, ruleSetRowID).Error; err != nil {
		return domain.PricingRuleSet{}, err
	}
	return ToDomainRuleSet(&stored)
}

// Replace validates and stores a new tariff table, bumping the version.
func (r *GormRuleSetRepository) Replace(ctx context.Context, rs domain.PricingRuleSet) (domain.PricingRuleSet, error) {
	if err := rs.Validate(); err != nil {
		return domain.PricingRuleSet{}, err
	}
	raw, err := FromDomainRuleSet(rs)
	if err != nil {
		return domain.PricingRuleSet{}, err
	}

	var out domain.PricingRuleSet
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model RuleSetModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, ruleSetRowID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			model = RuleSetModel{ID: ruleSetRowID, Version: 0}
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		model.Version++
		model.Rules = raw
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		out = rs
		out.Version = model.Version
		return nil
	})
	if err != nil {
		return domain.PricingRuleSet{}, err
	}
	return out, nil
}
