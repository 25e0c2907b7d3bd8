package seed

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/greenledger/greenledger-api/internal/models"
	"github.com/greenledger/greenledger-api/internal/repository"
)

// Run loads the canonical activity taxonomy, the 2024 standard factor set and
// two sample organizations (one with a negotiated custom factor) through the
// normal repositories. Inserts are idempotent where the schema allows it.
func Run(ctx context.Context, taxonomy *repository.TaxonomyRepository, factors *repository.FactorRepository, orgs *repository.OrganizationRepository, logger *zap.Logger) error {
	for i := range activityNodes {
		if err := taxonomy.Insert(ctx, &activityNodes[i]); err != nil {
			return err
		}
	}
	logger.Sugar().Infow("taxonomy seeded", "nodes", len(activityNodes))

	for i := range standardFactors {
		if err := factors.InsertStandard(ctx, &standardFactors[i]); err != nil {
			return err
		}
	}
	logger.Sugar().Infow("standard factors seeded", "factors", len(standardFactors))

	for i := range organizations {
		if err := orgs.CreateOrganization(ctx, &organizations[i].org); err != nil {
			return err
		}
		for j := range organizations[i].productions {
			organizations[i].productions[j].OrganizationID = organizations[i].org.ID
			if err := orgs.CreateProduction(ctx, &organizations[i].productions[j]); err != nil {
				return err
			}
		}
		for j := range organizations[i].customFactors {
			organizations[i].customFactors[j].OrganizationID = organizations[i].org.ID
			if err := factors.InsertCustom(ctx, &organizations[i].customFactors[j]); err != nil {
				return err
			}
		}
	}
	logger.Sugar().Infow("organizations seeded", "organizations", len(organizations))

	return nil
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

var activityNodes = []models.ActivityNode{
	{Code: "scope_1", Name: "Scope 1 - Direct Emissions", Description: strPtr("Direct GHG emissions from sources owned or controlled by the organization"), Level: 0, Scope: 1, IsLeaf: false, IsActive: true, SortOrder: 1},
	{Code: "stationary_combustion", Name: "Stationary Combustion", Description: strPtr("Emissions from fuel combustion in stationary sources"), ParentCode: strPtr("scope_1"), Level: 1, Scope: 1, Unit: strPtr("liters"), IsLeaf: true, IsActive: true, SortOrder: 1},
	{Code: "mobile_combustion", Name: "Mobile Combustion", Description: strPtr("Emissions from fuel combustion in mobile sources"), ParentCode: strPtr("scope_1"), Level: 1, Scope: 1, Unit: strPtr("km"), IsLeaf: true, IsActive: true, SortOrder: 2},
	{Code: "scope_3", Name: "Scope 3 - Indirect Emissions", Description: strPtr("Indirect GHG emissions from value chain activities"), Level: 0, Scope: 3, IsLeaf: false, IsActive: true, SortOrder: 3},
	{Code: "business_travel", Name: "Category 6 - Business Travel", Description: strPtr("Emissions from business travel by employees"), ParentCode: strPtr("scope_3"), Level: 1, Scope: 3, IsLeaf: false, IsActive: true, SortOrder: 6},
	{Code: "flight_domestic", Name: "Domestic Flights", Description: strPtr("Air travel within the same country"), ParentCode: strPtr("business_travel"), Level: 2, Scope: 3, Unit: strPtr("km"), IsLeaf: true, IsActive: true, SortOrder: 1},
	{Code: "flight_international", Name: "International Flights", Description: strPtr("Air travel between countries"), ParentCode: strPtr("business_travel"), Level: 2, Scope: 3, Unit: strPtr("km"), IsLeaf: true, IsActive: true, SortOrder: 2},
	{Code: "accommodation_hotel", Name: "Hotel Accommodation", Description: strPtr("Emissions from hotel stays"), ParentCode: strPtr("business_travel"), Level: 2, Scope: 3, Unit: strPtr("nights"), IsLeaf: true, IsActive: true, SortOrder: 3},
	{Code: "waste_generated", Name: "Category 5 - Waste Generated", Description: strPtr("Emissions from waste disposal and treatment"), ParentCode: strPtr("scope_3"), Level: 1, Scope: 3, IsLeaf: false, IsActive: true, SortOrder: 5},
	{Code: "waste_landfill", Name: "Landfill Waste", Description: strPtr("Waste sent to landfill"), ParentCode: strPtr("waste_generated"), Level: 2, Scope: 3, Unit: strPtr("kg"), IsLeaf: true, IsActive: true, SortOrder: 1},
	{Code: "waste_recycling", Name: "Recycled Waste", Description: strPtr("Waste sent for recycling"), ParentCode: strPtr("waste_generated"), Level: 2, Scope: 3, Unit: strPtr("kg"), IsLeaf: true, IsActive: true, SortOrder: 2},
}

var standardFactors = []models.EmissionFactor{
	{
		ActivityCode: "flight_domestic",
		Name:         "Domestic Flight - Economy Class",
		Description:  strPtr("Economy class domestic flights per passenger-km"),
		Source:       "climatiq",
		Country:      "US",
		Year:         2024,
		Unit:         "km",
		CO2Factor:    dec("0.133"),
		CH4Factor:    nullDec("0.000001"),
		N2OFactor:    nullDec("0.000002"),
		CO2eFactor:   dec("0.133"),
		Metadata:     models.JSONMap{"category": "passenger_flight", "class": "economy", "flight_type": "domestic"},
		IsActive:     true,
	},
	{
		ActivityCode: "flight_international",
		Name:         "International Flight - Economy Class",
		Description:  strPtr("Economy class international flights per passenger-km"),
		Source:       "climatiq",
		Country:      "US",
		Year:         2024,
		Unit:         "km",
		CO2Factor:    dec("0.089"),
		CH4Factor:    nullDec("0.000001"),
		N2OFactor:    nullDec("0.000001"),
		CO2eFactor:   dec("0.089"),
		Metadata:     models.JSONMap{"category": "passenger_flight", "class": "economy", "flight_type": "international"},
		IsActive:     true,
	},
	{
		ActivityCode: "accommodation_hotel",
		Name:         "Hotel Accommodation",
		Description:  strPtr("Hotel room occupancy per night"),
		Source:       "defra",
		Country:      "US",
		Year:         2024,
		Unit:         "nights",
		CO2Factor:    dec("28.4"),
		CH4Factor:    nullDec("0.01"),
		N2OFactor:    nullDec("0.02"),
		CO2eFactor:   dec("28.7"),
		Metadata:     models.JSONMap{"category": "accommodation", "type": "hotel"},
		IsActive:     true,
	},
	{
		ActivityCode: "waste_landfill",
		Name:         "Municipal Solid Waste - Landfill",
		Description:  strPtr("Municipal solid waste disposed in landfill"),
		Source:       "epa",
		Country:      "US",
		Year:         2024,
		Unit:         "kg",
		CO2Factor:    dec("0.45"),
		CH4Factor:    nullDec("0.82"),
		N2OFactor:    nullDec("0.003"),
		CO2eFactor:   dec("0.52"),
		Metadata:     models.JSONMap{"category": "waste", "disposal_method": "landfill", "waste_type": "municipal_solid"},
		IsActive:     true,
	},
	{
		ActivityCode: "waste_recycling",
		Name:         "Municipal Solid Waste - Recycling",
		Description:  strPtr("Municipal solid waste sent for recycling"),
		Source:       "epa",
		Country:      "US",
		Year:         2024,
		Unit:         "kg",
		CO2Factor:    dec("-0.12"),
		CH4Factor:    nullDec("0"),
		N2OFactor:    nullDec("0"),
		CO2eFactor:   dec("-0.12"),
		Metadata:     models.JSONMap{"category": "waste", "disposal_method": "recycling", "waste_type": "municipal_solid"},
		IsActive:     true,
	},
	{
		ActivityCode: "stationary_combustion",
		Name:         "Natural Gas Combustion",
		Description:  strPtr("Natural gas combustion in stationary sources"),
		Source:       "epa",
		Country:      "US",
		Year:         2024,
		Unit:         "liters",
		CO2Factor:    dec("1.93"),
		CH4Factor:    nullDec("0.000038"),
		N2OFactor:    nullDec("0.000036"),
		CO2eFactor:   dec("1.94"),
		Metadata:     models.JSONMap{"category": "stationary_combustion", "fuel_type": "natural_gas"},
		IsActive:     true,
	},
}

type orgSeed struct {
	org           models.Organization
	productions   []models.Production
	customFactors []models.CustomEmissionFactor
}

var organizations = []orgSeed{
	{
		org: models.Organization{Name: "ACME Corporation", Slug: "acme-corp", Description: strPtr("Sample manufacturing company for testing"), IsActive: true},
		productions: []models.Production{
			{Name: "ACME 2024 Carbon Assessment", Description: strPtr("Full scope 1, 2, and 3 assessment for fiscal year 2024"), CalculationVersion: "v2.1.0", IsActive: true},
		},
		customFactors: []models.CustomEmissionFactor{
			{
				ActivityCode: "flight_domestic",
				Name:         "ACME Negotiated Airline Factor",
				Description:  strPtr("Carrier-specific factor from the corporate travel agreement"),
				Unit:         "km",
				CO2Factor:    dec("0.101"),
				CO2eFactor:   dec("0.101"),
				Metadata:     models.JSONMap{"contract": "2024-air-travel"},
				IsActive:     true,
			},
		},
	},
	{
		org: models.Organization{Name: "GreenTech Solutions", Slug: "greentech-solutions", Description: strPtr("Renewable energy consulting firm"), IsActive: true},
		productions: []models.Production{
			{Name: "GreenTech Q3 2024 Report", Description: strPtr("Quarterly emissions tracking"), CalculationVersion: "v2.1.0", IsActive: true},
		},
	},
}
