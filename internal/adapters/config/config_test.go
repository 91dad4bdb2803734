package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "data/raw", cfg.News.DataDir)
	assert.Equal(t, []string{"MSME", "SME India", "Business Loan", "Economy"}, cfg.News.Queries)
	assert.Len(t, cfg.News.Languages, 22)
	assert.Equal(t, "en", cfg.News.Languages[0])
	assert.True(t, cfg.News.IngestOnStartup)
	assert.Equal(t, time.Duration(0), cfg.News.IngestInterval)
	assert.Equal(t, "model_output", cfg.Model.Path)
	assert.Equal(t, 512, cfg.Model.MaxLength)
	assert.Equal(t, 128, cfg.Training.MaxLength)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("NEWS_LANGUAGES", "en,hi")
	t.Setenv("NEWS_INGEST_INTERVAL", "30m")
	t.Setenv("MODEL_PATH", "/models/finvani")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"en", "hi"}, cfg.News.Languages)
	assert.Equal(t, 30*time.Minute, cfg.News.IngestInterval)
	assert.Equal(t, "/models/finvani", cfg.Model.Path)
}

func TestLoad_RejectsDatabaseWithoutUser(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_ENABLED", "true")

	_, err := Load()
	assert.Error(t, err)
}

func TestServerConfig_Origins(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want []string
	}{
		{"default only", "", []string{DefaultOrigin}},
		{"merged and trimmed", " https://finvani.app , https://www.finvani.app", []string{DefaultOrigin, "https://finvani.app", "https://www.finvani.app"}},
		{"empties and duplicates dropped", "http://localhost:3000,,", []string{DefaultOrigin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ServerConfig{AllowedOrigins: tt.env}
			assert.Equal(t, tt.want, c.Origins())
		})
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "finvani", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=finvani sslmode=disable", c.GetDSN())
}
