package checks

import (
	"context"
	"fmt"
	"sort"

	"github.com/ymajdalawi/dqwatch/internal/dbconn"
	"github.com/ymajdalawi/dqwatch/internal/issue"
)

func init() {
	Register("city-validation", NewCityValidation)
}

// defaultValidCities is the allow-list used when the config does not supply
// one.
var defaultValidCities = []string{
	"Baghdad", "Karbala", "Babel", "Diwaniyah", "Najaf", "Basra",
	"Maysan", "Saladin", "Anbar", "Dhi Qar", "Wasit", "Muthanna",
	"Kirkuk", "Sulaymaniyah", "Erbil", "Dohuk", "Nineveh", "Diyala", "Halabja",
}

type cityValidationSettings struct {
	ValidCities []string `mapstructure:"valid_cities"`
}

// CityValidation flags storefront customer addresses whose city is NULL,
// empty, or not on the allow-list.
type CityValidation struct {
	db          *dbconn.Provider
	validCities []string
}

// NewCityValidation builds the check, taking the allow-list from settings
// when present.
func NewCityValidation(deps Deps) (Check, error) {
	var s cityValidationSettings
	if err := decodeSettings(deps.Settings, &s); err != nil {
		return nil, fmt.Errorf("city-validation settings: %w", err)
	}
	cities := s.ValidCities
	if len(cities) == 0 {
		cities = defaultValidCities
	}
	return &CityValidation{db: deps.DB, validCities: cities}, nil
}

func (c *CityValidation) Name() string { return "city-validation" }

func (c *CityValidation) Description() string {
	return "Customer address cities must come from the allowed list"
}

func (c *CityValidation) Run(ctx context.Context) (*issue.Collection, error) {
	issues := issue.NewCollection()

	db, err := c.db.DB(dbconn.TargetPrimary)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT entity_id, city
		FROM customer_address_entity
		WHERE (city NOT IN (%s) OR city IS NULL OR city = '')
		ORDER BY entity_id`, dbconn.Placeholders(len(c.validCities)))

	args := make([]any, len(c.validCities))
	for i, city := range c.validCities {
		args[i] = city
	}

	rows, err := dbconn.Query(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}

	var invalidRecords, nullRecords, emptyRecords []issue.Record
	for _, row := range rows {
		id := row["entity_id"]
		switch city := row["city"]; {
		case city == nil:
			nullRecords = append(nullRecords, issue.Record{"id": id, "city": "(NULL)"})
		case city == "":
			emptyRecords = append(emptyRecords, issue.Record{"id": id, "city": "(Empty)"})
		default:
			invalidRecords = append(invalidRecords, issue.Record{"id": id, "city": city})
		}
	}

	if len(invalidRecords) > 0 {
		seen := map[string]bool{}
		var invalidCities []any
		for _, r := range invalidRecords {
			city := fmt.Sprint(r["city"])
			if !seen[city] {
				seen[city] = true
				invalidCities = append(invalidCities, city)
			}
		}
		sort.Slice(invalidCities, func(i, j int) bool {
			return invalidCities[i].(string) < invalidCities[j].(string)
		})

		err := issues.AddIssue(c.Name(), issue.SeverityMedium,
			fmt.Sprintf("Found %d invalid city name(s) in customer addresses", len(invalidCities)),
			issue.WithDetails(fmt.Sprintf(
				"Found %d unique invalid city name(s) affecting %d address record(s)",
				len(invalidCities), len(invalidRecords))),
			issue.WithExtra(&issue.ExtraData{
				InvalidValues: invalidCities,
				Records:       invalidRecords,
				Summary: map[string]any{
					"Unique invalid cities": len(invalidCities),
					"Affected addresses":    len(invalidRecords),
				},
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	if len(nullRecords) > 0 {
		err := issues.AddIssue(c.Name(), issue.SeverityMedium,
			fmt.Sprintf("Found %d address(es) with NULL city value", len(nullRecords)),
			issue.WithDetails(fmt.Sprintf("Found %d address record(s) with NULL city value", len(nullRecords))),
			issue.WithExtra(&issue.ExtraData{
				Records: nullRecords,
				Summary: map[string]any{"NULL cities": len(nullRecords)},
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	if len(emptyRecords) > 0 {
		err := issues.AddIssue(c.Name(), issue.SeverityMedium,
			fmt.Sprintf("Found %d address(es) with empty city value", len(emptyRecords)),
			issue.WithDetails(fmt.Sprintf("Found %d address record(s) with empty city value", len(emptyRecords))),
			issue.WithExtra(&issue.ExtraData{
				Records: emptyRecords,
				Summary: map[string]any{"Empty cities": len(emptyRecords)},
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	return issues, nil
}
