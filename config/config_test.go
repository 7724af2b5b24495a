package config

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"JWT_SECRET_KEY": "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "gpt-4", cfg.OpenAIModel)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, 10*time.Second, cfg.IDPTimeout)
	assert.False(t, cfg.GoogleEnabled())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"JWT_SECRET_KEY":   "s3cret",
		"PORT":             "9000",
		"DB_DRIVER":        "sqlite",
		"ACCESS_TOKEN_TTL": "45m",
		"CORS_ORIGINS":     "https://a.example,https://b.example",
		"AI_TIMEOUT":       "5s",
		"GOOGLE_CLIENT_ID": "client",
	})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.True(t, cfg.GoogleEnabled())
}

func TestLoadFrom_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {},
		"empty secret":   {"JWT_SECRET_KEY": ""},
		"bad driver":     {"JWT_SECRET_KEY": "s", "DB_DRIVER": "mysql"},
		"bad duration":   {"JWT_SECRET_KEY": "s", "AI_TIMEOUT": "soon"},
		"zero ttl":       {"JWT_SECRET_KEY": "s", "ACCESS_TOKEN_TTL": "0s"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(vars)
			assert.Error(t, err)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "edu"}
	assert.Equal(t, "host=db user=u password=p dbname=edu sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://u:p@db/edu"
	assert.Equal(t, "postgres://u:p@db/edu", cfg.PostgresDSN())
}

func TestOpenDBAndMigrate_SQLite(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"JWT_SECRET_KEY": "s",
		"DB_DRIVER":      "sqlite",
		"DATABASE_URL":   "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	db, err := OpenDB(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "learning_paths", "quizzes", "chat_logs", "forum_posts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
