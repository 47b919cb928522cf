package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ymajdalawi/dqwatch/internal/dbconn"
	"github.com/ymajdalawi/dqwatch/internal/issue"
)

func init() {
	Register("missing-product-images", NewMissingProductImages)
}

// defaultImageAttributes are the product image attribute codes checked when
// the config does not supply its own list.
var defaultImageAttributes = []string{"image", "small_image", "thumbnail", "swatch_image"}

type missingProductImagesSettings struct {
	Attributes []string `mapstructure:"attributes"`
}

// MissingProductImages flags products with a NULL per-store image attribute
// value even though a value exists for another store.
type MissingProductImages struct {
	db         *dbconn.Provider
	attributes []string
}

// NewMissingProductImages builds the check, taking the attribute code list
// from settings when present.
func NewMissingProductImages(deps Deps) (Check, error) {
	var s missingProductImagesSettings
	if err := decodeSettings(deps.Settings, &s); err != nil {
		return nil, fmt.Errorf("missing-product-images settings: %w", err)
	}
	attrs := s.Attributes
	if len(attrs) == 0 {
		attrs = defaultImageAttributes
	}
	return &MissingProductImages{db: deps.DB, attributes: attrs}, nil
}

func (c *MissingProductImages) Name() string { return "missing-product-images" }

func (c *MissingProductImages) Description() string {
	return "Products must have their image attributes set for every store"
}

func (c *MissingProductImages) Run(ctx context.Context) (*issue.Collection, error) {
	issues := issue.NewCollection()

	db, err := c.db.DB(dbconn.TargetPrimary)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			ea.attribute_id,
			s.store_id,
			p.entity_id,
			ea.attribute_code
		FROM catalog_product_entity AS p
		CROSS JOIN (SELECT 0 AS store_id UNION SELECT 1 UNION SELECT 2) AS s
		CROSS JOIN eav_attribute AS ea
		LEFT JOIN catalog_product_entity_varchar AS cpev
			ON cpev.entity_id = p.entity_id
			AND cpev.attribute_id = ea.attribute_id
			AND cpev.store_id = s.store_id
		LEFT JOIN (
			SELECT entity_id, attribute_id, value
			FROM catalog_product_entity_varchar
			WHERE value IS NOT NULL
		) AS src
			ON src.entity_id = p.entity_id
			AND src.attribute_id = ea.attribute_id
		WHERE ea.attribute_code IN (%s)
		  AND cpev.value IS NULL
		  AND src.value IS NOT NULL`, dbconn.Placeholders(len(c.attributes)))

	args := make([]any, len(c.attributes))
	for i, attr := range c.attributes {
		args[i] = attr
	}

	rows, err := dbconn.Query(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}

	// The src join can multiply rows, so dedupe on (attribute, store, product).
	seen := map[string]bool{}
	var records []issue.Record
	attributeCounts := map[string]int{}
	uniqueProducts := map[any]bool{}
	for _, row := range rows {
		attributeID := row["attribute_id"]
		storeID := row["store_id"]
		entityID := row["entity_id"]
		attributeCode, _ := row["attribute_code"].(string)
		if attributeID == nil || storeID == nil || entityID == nil || attributeCode == "" {
			continue
		}

		key := fmt.Sprintf("%v|%v|%v", attributeID, storeID, entityID)
		if seen[key] {
			continue
		}
		seen[key] = true

		records = append(records, issue.Record{
			"id":             entityID,
			"attribute_id":   attributeID,
			"attribute_code": attributeCode,
			"store_id":       storeID,
		})
		attributeCounts[attributeCode]++
		uniqueProducts[entityID] = true
	}

	if len(records) == 0 {
		return issues, nil
	}

	err = issues.AddIssue(c.Name(), issue.SeverityMedium,
		fmt.Sprintf("Found %d missing product image attribute(s)", len(records)),
		issue.WithDetails(fmt.Sprintf(
			"Found %d missing image attribute value(s) affecting %d unique product(s)",
			len(records), len(uniqueProducts))),
		issue.WithExtra(&issue.ExtraData{
			Records: records,
			Summary: map[string]any{
				"Total missing attributes": len(records),
				"Unique products affected": len(uniqueProducts),
				"By attribute":             formatAttributeCounts(attributeCounts),
			},
		}),
	)
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// formatAttributeCounts renders per-attribute counts as a stable string so
// the report output is deterministic.
func formatAttributeCounts(counts map[string]int) string {
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s=%d", code, counts[code]))
	}
	return strings.Join(parts, ", ")
}
