// Package server holds the HTTP server configuration and constants.
//
// While the start command handles the server startup, this package defines the
// configuration structure and the valid backend kinds.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key protecting the API, and the
// backend serving documents, accounts and realtime events (Appwrite or the
// self-hosted SQL store).
package server
