package checks

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ymajdalawi/dqwatch/internal/dbconn"
	"github.com/ymajdalawi/dqwatch/internal/issue"
)

func init() {
	Register("erp-customer-sync", NewERPCustomerSync)
}

// identifierPattern limits table and column names from settings to plain
// identifiers. They cannot be bound as query parameters, so anything else is
// rejected outright.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type erpCustomerSyncSettings struct {
	ERPTable       string `mapstructure:"erp_table"`
	ERPEmailColumn string `mapstructure:"erp_email_column"`
}

// ERPCustomerSync flags storefront customers that have no matching record in
// the ERP customer table. It is the one check that queries both database
// targets.
type ERPCustomerSync struct {
	db          *dbconn.Provider
	erpTable    string
	erpEmailCol string
}

// NewERPCustomerSync builds the check, taking the ERP table and email column
// names from settings when present.
func NewERPCustomerSync(deps Deps) (Check, error) {
	var s erpCustomerSyncSettings
	if err := decodeSettings(deps.Settings, &s); err != nil {
		return nil, fmt.Errorf("erp-customer-sync settings: %w", err)
	}
	if s.ERPTable == "" {
		s.ERPTable = "customers"
	}
	if s.ERPEmailColumn == "" {
		s.ERPEmailColumn = "email"
	}
	for _, ident := range []string{s.ERPTable, s.ERPEmailColumn} {
		if !identifierPattern.MatchString(ident) {
			return nil, fmt.Errorf("erp-customer-sync settings: invalid identifier %q", ident)
		}
	}
	return &ERPCustomerSync{db: deps.DB, erpTable: s.ERPTable, erpEmailCol: s.ERPEmailColumn}, nil
}

func (c *ERPCustomerSync) Name() string { return "erp-customer-sync" }

func (c *ERPCustomerSync) Description() string {
	return "Every storefront customer must exist in the ERP customer table"
}

func (c *ERPCustomerSync) Run(ctx context.Context) (*issue.Collection, error) {
	issues := issue.NewCollection()

	primary, err := c.db.DB(dbconn.TargetPrimary)
	if err != nil {
		return nil, err
	}
	secondary, err := c.db.DB(dbconn.TargetSecondary)
	if err != nil {
		return nil, err
	}

	storefront, err := dbconn.Query(ctx, primary, `
		SELECT entity_id, email
		FROM customer_entity
		WHERE email IS NOT NULL AND email <> ''
		ORDER BY entity_id`)
	if err != nil {
		return nil, err
	}

	// Identifiers were validated at construction; values never reach the
	// query text.
	erpRows, err := dbconn.Query(ctx, secondary, fmt.Sprintf(
		`SELECT %s AS email FROM %s WHERE %s IS NOT NULL`,
		c.erpEmailCol, c.erpTable, c.erpEmailCol))
	if err != nil {
		return nil, err
	}

	erpEmails := make(map[string]bool, len(erpRows))
	for _, row := range erpRows {
		if email, ok := row["email"].(string); ok {
			erpEmails[email] = true
		}
	}

	var records []issue.Record
	for _, row := range storefront {
		email, _ := row["email"].(string)
		if !erpEmails[email] {
			records = append(records, issue.Record{"id": row["entity_id"], "email": email})
		}
	}

	if len(records) == 0 {
		return issues, nil
	}

	err = issues.AddIssue(c.Name(), issue.SeverityMedium,
		fmt.Sprintf("Found %d storefront customer(s) missing from the ERP", len(records)),
		issue.WithDetails(fmt.Sprintf(
			"Found %d storefront customer(s) with no matching %s record in the ERP database",
			len(records), c.erpTable)),
		issue.WithExtra(&issue.ExtraData{
			Records: records,
			Summary: map[string]any{
				"Storefront customers checked": len(storefront),
				"Missing from ERP":             len(records),
			},
		}),
	)
	if err != nil {
		return nil, err
	}
	return issues, nil
}
