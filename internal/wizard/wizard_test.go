package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"
)

func TestRenderConfig_PrimaryOnly(t *testing.T) {
	spec := &Spec{
		PrimaryHost: "db.internal",
		PrimaryPort: 3307,
		PrimaryUser: "reporting",
		PrimaryName: "magento",
		TenantID:    "tenant-id",
		ClientID:    "client-id",
		Sender:      "alerts@example.com",
		Recipients:  []string{"ops@example.com"},
	}

	result, err := RenderConfig(spec)
	require.NoError(t, err)

	assert.Contains(t, result, "host: db.internal")
	assert.Contains(t, result, "port: 3307")
	assert.Contains(t, result, "user: reporting")
	assert.Contains(t, result, "name: magento")
	assert.NotContains(t, result, "secondary:")
	assert.Contains(t, result, "tenant_id: tenant-id")
	assert.Contains(t, result, "- ops@example.com")
	assert.Contains(t, result, "DQWATCH_PRIMARY_DB_PASSWORD")
	assert.Contains(t, result, "DQWATCH_EMAIL_CLIENT_SECRET")
	assert.Contains(t, result, "max_list_items: 10")
	assert.Contains(t, result, "max_table_rows: 10")
}

func TestRenderConfig_WithSecondary(t *testing.T) {
	spec := &Spec{
		PrimaryHost:      "localhost",
		PrimaryPort:      3306,
		PrimaryUser:      "magento",
		PrimaryName:      "magento",
		SecondaryEnabled: true,
		SecondaryHost:    "erp.internal",
		SecondaryPort:    3306,
		SecondaryUser:    "erp_ro",
		SecondaryName:    "erp",
		TenantID:         "t",
		ClientID:         "c",
		Sender:           "alerts@example.com",
		Recipients:       []string{"a@example.com", "b@example.com"},
	}

	result, err := RenderConfig(spec)
	require.NoError(t, err)

	assert.Contains(t, result, "secondary:")
	assert.Contains(t, result, "host: erp.internal")
	assert.Contains(t, result, "- a@example.com")
	assert.Contains(t, result, "- b@example.com")
}

func TestRenderConfig_ProducesValidYAML(t *testing.T) {
	spec := &Spec{
		PrimaryHost: "localhost",
		PrimaryPort: 3306,
		PrimaryUser: "magento",
		PrimaryName: "magento",
		TenantID:    "t",
		ClientID:    "c",
		Sender:      "alerts@example.com",
		Recipients:  []string{"ops@example.com"},
	}

	result, err := RenderConfig(spec)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(result), &doc))
	assert.Contains(t, doc, "databases")
	assert.Contains(t, doc, "email")
	assert.Contains(t, doc, "report")
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", "3306", ""},
		{"low bound", "1", ""},
		{"high bound", "65535", ""},
		{"zero", "0", "port must be between 1 and 65535"},
		{"too large", "70000", "port must be between 1 and 65535"},
		{"not a number", "abc", "port must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePort(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequired(t *testing.T) {
	validate := validateRequired("sender")
	assert.NoError(t, validate("alerts@example.com"))
	assert.EqualError(t, validate("   "), "sender is required")
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "a@example.com", []string{"a@example.com"}},
		{"multiple", "a@example.com, b@example.com", []string{"a@example.com", "b@example.com"}},
		{"with blanks", "a,, b, ,c", []string{"a", "b", "c"}},
		{"whitespace only", "  ,  ,  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitAndTrim(tt.input))
		})
	}
}
