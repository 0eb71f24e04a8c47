// Package appwrite implements the backend interfaces against the Appwrite
// REST API and its realtime websocket.
package appwrite
