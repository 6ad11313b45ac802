// Package static embeds the API documentation assets served under /static
// and /docs.
package static

import "embed"

//go:embed openapi.html openapi.json
var Files embed.FS
