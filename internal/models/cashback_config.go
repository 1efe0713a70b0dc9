package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CashbackConfig is the per-account reward configuration. The persistence
// layer stores it as nested JSON, sometimes double-encoded as a JSON string;
// UnmarshalJSON accepts both shapes.
type CashbackConfig struct {
	Program             CashbackProgram `json:"program"`
	SharedLimitParentID string          `json:"sharedLimitParentId,omitempty"`
	ForceStandalone     bool            `json:"forceStandalone,omitempty"`
}

// CashbackProgram describes the account-level reward program. Levels, when
// present, take precedence over the flat rate.
type CashbackProgram struct {
	Rate      decimal.Decimal `json:"rate"`
	MaxAmount decimal.Decimal `json:"maxAmount"`
	MinSpend  decimal.Decimal `json:"minSpend"`
	Levels    []CashbackLevel `json:"levels,omitempty"`
}

// CashbackLevel is one spend tier. The highest level whose MinTotalSpend is
// at or below the cycle's running spend applies.
type CashbackLevel struct {
	MinTotalSpend decimal.Decimal `json:"minTotalSpend"`
	DefaultRate   decimal.Decimal `json:"defaultRate"`
	CategoryRules []CategoryRule  `json:"categoryRules,omitempty"`
}

// CategoryRule overrides a level's default rate for matching categories,
// capped by a cumulative MaxReward across the cycle.
type CategoryRule struct {
	CategoryIDs []string        `json:"categoryIds"`
	Rate        decimal.Decimal `json:"rate"`
	MaxReward   decimal.Decimal `json:"maxReward,omitempty"`
}

// Matches reports whether the rule applies to the given category.
func (r *CategoryRule) Matches(categoryID string) bool {
	if categoryID == "" {
		return false
	}
	for _, id := range r.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// HasLevels reports whether tiered evaluation applies.
func (p *CashbackProgram) HasLevels() bool {
	return len(p.Levels) > 0
}

// UnmarshalJSON accepts the config either as a JSON object or as a JSON
// string containing the object (legacy rows were stored double-encoded).
func (c *CashbackConfig) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	// Double-encoded legacy shape: unwrap the string, then decode the object.
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return fmt.Errorf("invalid cashback config string: %w", err)
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return nil
		}
		data = []byte(inner)
	}

	type alias CashbackConfig
	var parsed alias
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("invalid cashback config: %w", err)
	}
	*c = CashbackConfig(parsed)
	return nil
}

// ParseCashbackConfig decodes a raw config payload, tolerating both the
// object and string-wrapped shapes. A nil or empty payload yields nil.
func ParseCashbackConfig(raw json.RawMessage) (*CashbackConfig, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var cfg CashbackConfig
	if err := cfg.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	if cfg.isEmpty() {
		// Decoded to an entirely empty config; treat as unconfigured.
		return nil, nil
	}
	return &cfg, nil
}

func (c *CashbackConfig) isEmpty() bool {
	return c.SharedLimitParentID == "" && !c.ForceStandalone &&
		!c.Program.HasLevels() && c.Program.Rate.IsZero() &&
		c.Program.MaxAmount.IsZero() && c.Program.MinSpend.IsZero()
}

// Validate checks the configuration for internally inconsistent values.
func (c *CashbackConfig) Validate() error {
	if c.Program.Rate.IsNegative() {
		return fmt.Errorf("program rate cannot be negative: %s", c.Program.Rate.String())
	}
	if c.Program.MaxAmount.IsNegative() {
		return fmt.Errorf("program max amount cannot be negative: %s", c.Program.MaxAmount.String())
	}
	for i, level := range c.Program.Levels {
		if level.MinTotalSpend.IsNegative() {
			return fmt.Errorf("level %d min total spend cannot be negative", i)
		}
		if level.DefaultRate.IsNegative() {
			return fmt.Errorf("level %d default rate cannot be negative", i)
		}
		for j, rule := range level.CategoryRules {
			if len(rule.CategoryIDs) == 0 {
				return fmt.Errorf("level %d category rule %d has no categories", i, j)
			}
			if rule.Rate.IsNegative() {
				return fmt.Errorf("level %d category rule %d rate cannot be negative", i, j)
			}
		}
	}
	return nil
}
