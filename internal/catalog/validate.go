package catalog

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/bittubunny/BLMS/internal/apperr"
)

// contentSchema is the shape required of topics and quiz payloads: a sequence
// of objects, each carrying a non-empty id. Everything beyond that is opaque.
const contentSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {
				"type": ["string", "number"],
				"minLength": 1
			}
		}
	}
}`

var contentSchemaLoader = gojsonschema.NewStringLoader(contentSchema)

func validateContent(field string, entries []map[string]any) error {
	if entries == nil {
		return nil
	}

	result, err := gojsonschema.Validate(contentSchemaLoader, gojsonschema.NewGoLoader(entries))
	if err != nil {
		return fmt.Errorf("validating %s: %w", field, err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("%s: %s: %w", field, first.String(), apperr.ErrValidation)
	}
	return nil
}
