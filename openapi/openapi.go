// Package openapi embeds the OpenAPI description of the ride-sharing API.
// The HTTP server serves it at /openapi.yaml.
package openapi

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
