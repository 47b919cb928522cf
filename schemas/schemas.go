// Package schemas embeds the JSON Schema documents used to validate
// user-supplied configuration files.
package schemas

import _ "embed"

// ConfigSchemaJSON is the JSON Schema for dqwatch.yaml configuration files.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
