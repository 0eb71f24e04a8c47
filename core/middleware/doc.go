// Package middleware groups the HTTP middleware of the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the API.
//   - rayid: a unique request id (RayID) for every request, stored in the
//     context and echoed in the response headers for tracing.
//   - requestlog: one zap line per request with status and latency, at warn
//     for 4xx and error for 5xx.
package middleware
