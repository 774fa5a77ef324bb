package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnString(t *testing.T) {
	assert.Equal(t,
		"postgres://postgres@localhost:5432/gymtrack_db",
		ConnString(NewDBPoolParams{DBHost: "localhost", DBPort: "5432", DBName: "gymtrack_db"}),
	)
	assert.Equal(t,
		"postgres://gym:s3cr%40t@db:5433/gymtrack_db",
		ConnString(NewDBPoolParams{DBHost: "db", DBPort: "5433", DBName: "gymtrack_db", DBUser: "gym", DBPassword: "s3cr@t"}),
	)
}
