// Package auth exposes sign-up, sign-in and logout over HTTP and provides
// the RequireUser guard for routes that need a logged-in user.
package auth
