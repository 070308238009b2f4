// Package spec embeds the OpenAPI description of the bookmarks HTTP surface.
// The server serves it at /openapi.yaml and the handler tests check every
// registered route against it.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
