package infrastructure

import "time"

// RuleSetModel is the database row backing the pricing rule set. A single
// row (fixed primary key) holds the whole tariff table as a JSON document,
// the same way the shop's original rule record was stored.
type RuleSetModel struct {
	ID        uint   `gorm:"primaryKey"`
	Version   int64  `gorm:"not null"`
	Rules     string `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RuleSetModel) TableName() string {
	return "pricing_rule_sets"
}

// ruleSetRowID pins the singleton row.
const ruleSetRowID uint = 1
