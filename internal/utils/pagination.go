// Package utils provides small generic helpers shared across layers.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// plain base-10 integer. Used for query parameters where a bad value should
// fall back rather than fail the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
