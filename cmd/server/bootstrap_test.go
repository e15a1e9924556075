package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitedesk/sitedesk/internal/app"
)

func TestConvertDatabaseConfigDefaultsToSQLite(t *testing.T) {
	cfg := &app.Config{}

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "sqlite", dbCfg.Driver)
}

func TestConvertDatabaseConfigPostgres(t *testing.T) {
	cfg := &app.Config{
		Database: app.DatabaseConfig{
			Driver: "PostgreSQL",
			Postgres: app.DBAuthConfig{
				Host:     " db.internal ",
				Port:     5432,
				Database: "sitedesk",
				Username: "app",
				Password: "secret",
			},
		},
	}

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5432, dbCfg.Port)
	require.Equal(t, "sitedesk", dbCfg.Name)
	require.Equal(t, "app", dbCfg.User)
}

func TestEnsureSecretsPresent(t *testing.T) {
	require.Error(t, ensureSecretsPresent(nil))
	require.Error(t, ensureSecretsPresent(&app.Config{}))

	cfg := &app.Config{}
	cfg.Auth.JWT.Secret = "  configured-secret  "
	require.NoError(t, ensureSecretsPresent(cfg))
	require.Equal(t, "configured-secret", cfg.Auth.JWT.Secret)
}
