package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/greenledger/greenledger-api/internal/models"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
)

// FamilyRule declares the payload contract for one activity-code family. New
// families are added here, not as branches in the pipeline.
type FamilyRule struct {
	Prefix       string   `json:"prefix"`
	RequiredKeys []string `json:"required_keys"`
	QuantityKey  string   `json:"quantity_key"`
}

// RuleSet matches activity codes against family rules by longest prefix.
type RuleSet struct {
	rules               []FamilyRule
	fallbackQuantityKey string
}

// NewRuleSet builds a rule set from the given family rules.
func NewRuleSet(rules []FamilyRule, fallbackQuantityKey string) *RuleSet {
	ordered := make([]FamilyRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})
	return &RuleSet{rules: ordered, fallbackQuantityKey: fallbackQuantityKey}
}

// DefaultRuleSet mirrors the payload guards enforced at the database level:
// the same rules must reject a record before it ever reaches storage.
func DefaultRuleSet() *RuleSet {
	return NewRuleSet([]FamilyRule{
		{Prefix: "flight_", RequiredKeys: []string{"flight_origin", "flight_destination"}, QuantityKey: "flight_distance_km"},
		{Prefix: "accommodation_", RequiredKeys: []string{"nights", "room_type"}, QuantityKey: "nights"},
		{Prefix: "waste_", RequiredKeys: []string{"waste_type", "amount"}, QuantityKey: "amount"},
	}, "amount")
}

// Match returns the family rule for an activity code, or nil when the code
// belongs to no declared family.
func (rs *RuleSet) Match(activityCode string) *FamilyRule {
	for i := range rs.rules {
		if strings.HasPrefix(activityCode, rs.rules[i].Prefix) {
			return &rs.rules[i]
		}
	}
	return nil
}

// MissingKeys lists required keys that are absent or null, sorted.
func (rs *RuleSet) MissingKeys(activityCode string, payload models.JSONMap) []string {
	rule := rs.Match(activityCode)
	if rule == nil {
		return nil
	}

	var missing []string
	for _, key := range rule.RequiredKeys {
		value, ok := payload[key]
		if !ok || value == nil {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// Validate enforces the family's required keys against a payload.
func (rs *RuleSet) Validate(activityCode string, payload models.JSONMap) error {
	missing := rs.MissingKeys(activityCode, payload)
	if len(missing) == 0 {
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation,
		fmt.Sprintf("activity %s payload missing required keys: %s", activityCode, strings.Join(missing, ", ")))
}

// QuantityKey returns the payload key holding the activity quantity.
func (rs *RuleSet) QuantityKey(activityCode string) string {
	if rule := rs.Match(activityCode); rule != nil {
		return rule.QuantityKey
	}
	return rs.fallbackQuantityKey
}

// Quantity extracts the activity quantity from the payload. The second
// return is false when the key is absent or not numeric; callers decide
// whether that is an anomaly or an error.
func (rs *RuleSet) Quantity(activityCode string, payload models.JSONMap) (decimal.Decimal, bool) {
	value, ok := payload[rs.QuantityKey(activityCode)]
	if !ok || value == nil {
		return decimal.Zero, false
	}
	return toDecimal(value)
}

func toDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case decimal.Decimal:
		return v, true
	default:
		return decimal.Zero, false
	}
}
