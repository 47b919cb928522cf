package dbconn

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ymajdalawi/dqwatch/internal/config"
)

func fullConfig() config.DatabasesConfig {
	return config.DatabasesConfig{
		Primary: config.DatabaseConfig{
			Host: "localhost", Port: 3306, User: "reader", Password: "pw", Name: "storefront",
		},
		Secondary: config.DatabaseConfig{
			Host: "localhost", Port: 3306, User: "erp_reader", Name: "erp",
		},
	}
}

func TestProviderLazyOpen(t *testing.T) {
	p := NewProvider(fullConfig())
	defer p.Close()

	// sql.Open does not dial, so provisioning succeeds without a server.
	db1, err := p.DB(TargetPrimary)
	require.NoError(t, err)
	require.NotNil(t, db1)

	db2, err := p.DB(TargetPrimary)
	require.NoError(t, err)
	require.Same(t, db1, db2, "same target must reuse the pool")

	sec, err := p.DB(TargetSecondary)
	require.NoError(t, err)
	require.NotSame(t, db1, sec)
}

func TestProviderUnknownTarget(t *testing.T) {
	p := NewProvider(fullConfig())
	defer p.Close()

	_, err := p.DB(Target("tertiary"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown database target")
}

func TestProviderMissingParameters(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{name: "no user", cfg: config.DatabaseConfig{Host: "h", Port: 3306, Name: "db"}},
		{name: "no name", cfg: config.DatabaseConfig{Host: "h", Port: 3306, User: "u"}},
		{name: "empty", cfg: config.DatabaseConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProvider(config.DatabasesConfig{Primary: tt.cfg})
			defer p.Close()

			_, err := p.DB(TargetPrimary)
			require.Error(t, err)
			require.Contains(t, err.Error(), "not configured")
		})
	}
}

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "", Placeholders(0))
	require.Equal(t, "?", Placeholders(1))
	require.Equal(t, "?,?,?", Placeholders(3))
}
