// Package routing classifies navigation paths and decides whether a
// request may proceed, before any handler or data fetch runs.
package routing

import "strings"

// Class is the access class of a navigation path.
type Class int

const (
	// Public paths are reachable by anyone.
	Public Class = iota
	// Protected paths require an authenticated identity.
	Protected
	// AuthOnly paths (login, signup) are only for anonymous visitors.
	AuthOnly
)

func (c Class) String() string {
	switch c {
	case Protected:
		return "protected"
	case AuthOnly:
		return "auth-only"
	default:
		return "public"
	}
}

// The prefix tables are fixed per deployment. Prefixes must not overlap
// between the two tables; Classify is order-independent because of that.
var (
	protectedPrefixes = []string{
		"/dashboard",
		"/members",
		"/classes",
		"/trainers",
		"/settings",
		"/profile",
	}
	authOnlyPrefixes = []string{
		"/login",
		"/signup",
	}
)

// Classify returns the access class of a path. Matching is prefix-based
// and case-sensitive.
func Classify(path string) Class {
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return Protected
		}
	}
	for _, prefix := range authOnlyPrefixes {
		if strings.HasPrefix(path, prefix) {
			return AuthOnly
		}
	}
	return Public
}

// Decision is the access gate's verdict for a request.
type Decision int

const (
	// Allow lets the request through to the handler.
	Allow Decision = iota
	// RedirectLogin sends an anonymous visitor to the login page.
	RedirectLogin
	// RedirectHome sends a signed-in user away from auth-only pages.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "allow"
	}
}

// Decide applies the gate rules in order. It is total and deterministic:
// every (authenticated, class) pair maps to exactly one decision.
func Decide(authenticated bool, class Class) Decision {
	if class == Protected && !authenticated {
		return RedirectLogin
	}
	if class == AuthOnly && authenticated {
		return RedirectHome
	}
	return Allow
}
