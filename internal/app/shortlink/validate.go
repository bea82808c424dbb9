package shortlink

import "strings"

// reservedAliases collide with routes served next to the redirect handler.
var reservedAliases = map[string]struct{}{
	"api":         {},
	"healthz":     {},
	"metrics":     {},
	"favicon.ico": {},
}

// ReservedAlias reports whether alias would be shadowed by a fixed route.
// Matching is case-insensitive since routers and browsers disagree on case.
func ReservedAlias(alias string) bool {
	_, ok := reservedAliases[strings.ToLower(alias)]
	return ok
}

// RoutableAlias reports whether alias fits in a single path segment, which is
// all the HTTP redirect route matches.
func RoutableAlias(alias string) bool {
	return !strings.Contains(alias, "/")
}
