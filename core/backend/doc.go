// Package backend defines the thin request/response and publish/subscribe surface
// the application consumes from its backend-as-a-service.
//
// Three services are modelled:
//   - Documents: listing with equality queries, get, create, update, delete
//   - Accounts: sign-up, email/password sessions, current account, name update,
//     password recovery
//   - Realtime: channel subscriptions delivering full-document change events
//
// Two implementations exist: package appwrite talks to a hosted Appwrite project over
// REST and websocket, and package sqlstore provides a self-hosted equivalent on GORM.
//
// Remote failures surface as *Error carrying the HTTP status code, so callers can
// branch on IsCode(err, http.StatusConflict) and similar.
package backend
