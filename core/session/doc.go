// Package session holds the authenticated user of the agent and the
// account operations that change it.
package session
