package lang

import "embed"

// mappingSchemaFS contains the embedded JSON schema for custom language
// mapping files.
//
//go:embed mapping-schema.json
var mappingSchemaFS embed.FS
