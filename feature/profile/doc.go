// Package profile implements the own-profile screen: fetching or creating the
// profile document of the logged-in user, editing it, and password recovery.
package profile
