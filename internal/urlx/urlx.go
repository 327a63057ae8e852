// Package urlx joins base URLs and endpoint paths.
package urlx

import "strings"

// Join returns base and endpoint separated by exactly one slash, however many
// slashes either side carries at the boundary. The scheme separator of an
// absolute base ("https://") is left alone. An empty endpoint yields the base
// without a trailing slash.
func Join(base, endpoint string) string {
	base = strings.TrimRight(base, "/")
	endpoint = strings.TrimLeft(endpoint, "/")
	if endpoint == "" {
		return base
	}
	return base + "/" + endpoint
}
