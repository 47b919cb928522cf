package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newListCommand()
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.GreaterOrEqual(t, len(lines), 5)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[0], "DESCRIPTION")

	assert.Contains(t, out, "city-validation")
	assert.Contains(t, out, "customer-name-mismatch")
	assert.Contains(t, out, "erp-customer-sync")
	assert.Contains(t, out, "missing-product-images")
}

func TestListCommand_ColumnsAligned(t *testing.T) {
	var buf bytes.Buffer
	cmd := newListCommand()
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	col := strings.Index(lines[0], "DESCRIPTION")
	require.Greater(t, col, 0)

	for _, line := range lines[1:] {
		// the description column starts at the same offset on every row
		assert.Equal(t, "  ", line[col-2:col])
		assert.NotEqual(t, byte(' '), line[col])
	}
}
