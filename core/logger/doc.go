// Package logger builds the zap logger shared by every component.
//
// Level is one of debug, info, warn or error; Format is json (default) or
// console. Request handlers derive a per-request logger with WithRayID so
// every line of one request carries the same ray_id.
//
//	l := logger.WithRayID(log, c)
//	l.Warn("Profile update failed", zap.Error(err))
package logger
