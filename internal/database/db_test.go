package database

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-reservation/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.Config{DBUser: "app", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "theater"})
	assert.True(t, strings.HasPrefix(dsn, "app:pw@tcp(db:3306)/theater?"))
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- header\nCREATE TABLE a (id INT);\n\n-- note\nCREATE TABLE b (\n  id INT\n);\n")
	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", got[0])
	assert.True(t, strings.HasPrefix(got[1], "CREATE TABLE b ("))
}

func TestEmbeddedSchemaCoversTables(t *testing.T) {
	body, err := migrations.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	stmts := splitStatements(string(body))
	for _, table := range []string{"users", "refresh_tokens", "show_events", "vouchers", "promo_codes",
		"reservations", "waitlist_entries", "settings", "audit_log"} {
		found := false
		for _, s := range stmts {
			if strings.HasPrefix(s, "CREATE TABLE "+table+" (") {
				found = true
			}
		}
		assert.True(t, found, table)
	}
}

func TestMigrateSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").WithArgs("0001_init").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	log := logrus.New()
	log.SetOutput(io.Discard)
	require.NoError(t, Migrate(context.Background(), db, log))
	assert.NoError(t, mock.ExpectationsWereMet())
}
