package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenledger/greenledger-api/internal/models"
	appErrors "github.com/greenledger/greenledger-api/pkg/errors"
)

func TestRuleSetValidateMissingKeys(t *testing.T) {
	rules := DefaultRuleSet()

	err := rules.Validate("flight_domestic", models.JSONMap{"flight_distance_km": 1850})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	// Missing keys are reported sorted for stable messages.
	assert.Contains(t, err.Error(), "flight_destination, flight_origin")
}

func TestRuleSetValidateNullValueCountsAsMissing(t *testing.T) {
	rules := DefaultRuleSet()

	err := rules.Validate("waste_landfill", models.JSONMap{
		"waste_type": nil,
		"amount":     120.5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waste_type")
	assert.NotContains(t, err.Error(), "amount")
}

func TestRuleSetValidateComplete(t *testing.T) {
	rules := DefaultRuleSet()

	err := rules.Validate("flight_international", models.JSONMap{
		"flight_origin":      "JFK",
		"flight_destination": "LHR",
		"flight_distance_km": 5540,
	})
	assert.NoError(t, err)
}

func TestRuleSetUnknownFamilyHasNoRequiredKeys(t *testing.T) {
	rules := DefaultRuleSet()

	assert.NoError(t, rules.Validate("stationary_combustion", models.JSONMap{}))
	assert.Equal(t, "amount", rules.QuantityKey("stationary_combustion"))
}

func TestRuleSetQuantityKeys(t *testing.T) {
	rules := DefaultRuleSet()

	assert.Equal(t, "flight_distance_km", rules.QuantityKey("flight_domestic"))
	assert.Equal(t, "nights", rules.QuantityKey("accommodation_hotel"))
	assert.Equal(t, "amount", rules.QuantityKey("waste_recycling"))
}

func TestRuleSetQuantityCoercion(t *testing.T) {
	rules := DefaultRuleSet()

	cases := []struct {
		name    string
		value   interface{}
		want    string
		numeric bool
	}{
		{"float64", float64(1850.5), "1850.5", true},
		{"int", 1850, "1850", true},
		{"json number", json.Number("1850.25"), "1850.25", true},
		{"numeric string", "42.7", "42.7", true},
		{"decimal", decimal.RequireFromString("3.14"), "3.14", true},
		{"garbage string", "not-a-number", "0", false},
		{"bool", true, "0", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qty, ok := rules.Quantity("flight_domestic", models.JSONMap{"flight_distance_km": tc.value})
			assert.Equal(t, tc.numeric, ok)
			assert.Equal(t, tc.want, qty.String())
		})
	}
}

func TestRuleSetQuantityAbsentKey(t *testing.T) {
	rules := DefaultRuleSet()

	qty, ok := rules.Quantity("flight_domestic", models.JSONMap{})
	assert.False(t, ok)
	assert.True(t, qty.IsZero())
}

func TestRuleSetLongestPrefixWins(t *testing.T) {
	rules := NewRuleSet([]FamilyRule{
		{Prefix: "flight_", RequiredKeys: []string{"flight_origin"}, QuantityKey: "flight_distance_km"},
		{Prefix: "flight_charter_", RequiredKeys: []string{"charter_ref"}, QuantityKey: "flight_hours"},
	}, "amount")

	rule := rules.Match("flight_charter_private")
	require.NotNil(t, rule)
	assert.Equal(t, "flight_charter_", rule.Prefix)
	assert.Equal(t, "flight_hours", rules.QuantityKey("flight_charter_private"))
}
