package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_profiles (id INTEGER PRIMARY KEY, name TEXT NOT NULL, city TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_profiles")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "integer", colMap["id"].Type)
	assert.Equal(t, "PRI", colMap["id"].Key)
	assert.Equal(t, "text", colMap["name"].Type)
	assert.Equal(t, "NO", colMap["name"].Null)
	assert.Equal(t, "YES", colMap["city"].Null)

	// PRAGMA table_info returns an empty result for a non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE accounts (id TEXT PRIMARY KEY, email TEXT)").Error)

	missing, err := MissingColumns(db, "accounts", "id", "Email", "password_hash")
	assert.NoError(t, err)
	assert.Equal(t, []string{"password_hash"}, missing)

	missing, err = MissingColumns(db, "absent", "id")
	assert.NoError(t, err)
	assert.Equal(t, []string{"id"}, missing)
}

func TestGetTableColumns_MySQLError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SHOW COLUMNS FROM `documents`").WillReturnError(assert.AnError)

	cols, err := GetTableColumns(db, "documents")
	assert.Error(t, err)
	assert.Nil(t, cols)
	assert.Contains(t, err.Error(), "documents")
}
