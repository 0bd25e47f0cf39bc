package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/college-notes-api/pkg/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "notes",
		Password: "p@ss:word",
		Name:     "college_notes",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://notes:p%40ss%3Aword@db:5433/college_notes?sslmode=disable", dsn)
}

func TestEmbeddedMigrationsPaired(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	assert.NoError(t, err)
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
	assert.NotZero(t, ups)
}
