package checks

import (
	"context"
	"fmt"

	"github.com/ymajdalawi/dqwatch/internal/dbconn"
	"github.com/ymajdalawi/dqwatch/internal/issue"
)

func init() {
	Register("customer-name-mismatch", NewCustomerNameMismatch)
}

// CustomerNameMismatch flags storefront addresses whose first or last name
// differs from the owning customer entity.
type CustomerNameMismatch struct {
	db *dbconn.Provider
}

// NewCustomerNameMismatch builds the check. It has no settings.
func NewCustomerNameMismatch(deps Deps) (Check, error) {
	return &CustomerNameMismatch{db: deps.DB}, nil
}

func (c *CustomerNameMismatch) Name() string { return "customer-name-mismatch" }

func (c *CustomerNameMismatch) Description() string {
	return "Address names must match the owning customer entity"
}

func (c *CustomerNameMismatch) Run(ctx context.Context) (*issue.Collection, error) {
	issues := issue.NewCollection()

	db, err := c.db.DB(dbconn.TargetPrimary)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT
			ce.entity_id   AS customer_id,
			ce.firstname   AS customer_firstname,
			ce.lastname    AS customer_lastname,
			cae.entity_id  AS address_id,
			cae.firstname  AS address_firstname,
			cae.lastname   AS address_lastname
		FROM customer_entity AS ce
		JOIN customer_address_entity AS cae
			ON cae.parent_id = ce.entity_id
		WHERE
			ce.firstname <> cae.firstname
		 OR ce.lastname <> cae.lastname
		ORDER BY ce.entity_id, cae.entity_id`

	rows, err := dbconn.Query(ctx, db, query)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return issues, nil
	}

	records := make([]issue.Record, 0, len(rows))
	uniqueCustomers := map[any]bool{}
	for _, row := range rows {
		records = append(records, issue.Record{
			"customer_id":        row["customer_id"],
			"customer_firstname": orNull(row["customer_firstname"]),
			"customer_lastname":  orNull(row["customer_lastname"]),
			"address_id":         row["address_id"],
			"address_firstname":  orNull(row["address_firstname"]),
			"address_lastname":   orNull(row["address_lastname"]),
		})
		uniqueCustomers[row["customer_id"]] = true
	}

	err = issues.AddIssue(c.Name(), issue.SeverityMedium,
		fmt.Sprintf("Found %d address(es) with mismatched customer names", len(records)),
		issue.WithDetails(fmt.Sprintf(
			"Found %d address record(s) where customer name does not match the customer entity name, affecting %d unique customer(s)",
			len(records), len(uniqueCustomers))),
		issue.WithExtra(&issue.ExtraData{
			Records: records,
			Summary: map[string]any{
				"Total mismatched addresses": len(records),
				"Unique customers affected":  len(uniqueCustomers),
			},
		}),
	)
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// orNull substitutes a placeholder for NULL or empty values so the report
// never renders a blank cell.
func orNull(v any) any {
	if v == nil || v == "" {
		return "(NULL)"
	}
	return v
}
