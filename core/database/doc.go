// Package database opens the GORM connection of the self-hosted document store.
//
// MySQL is the production driver and SQLite serves single-node setups and tests.
// GetTableColumns and MissingColumns let the store verify its schema after
// migration; they read SHOW COLUMNS on MySQL and PRAGMA table_info on SQLite.
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "documents", "document_id", "data")
package database
