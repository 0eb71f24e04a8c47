// Package sqlstore is a self-hosted backend built on gorm.
//
// Documents are stored as JSON text and filtered in Go, accounts keep bcrypt
// password hashes, and every document write is published to realtime
// subscribers through an in-process Broker.
package sqlstore
