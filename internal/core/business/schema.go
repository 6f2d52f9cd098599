package business

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// profileSchema only pins what the rest of the pipeline relies on.
const profileSchema = `{
  "type": "object",
  "required": ["name", "industry", "description"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string", "minLength": 1},
    "industry": {"type": "string", "minLength": 1},
    "description": {"type": "string", "minLength": 1},
    "email": {"type": "string"},
    "phone": {"type": "string"},
    "services": {
      "type": "array",
      "items": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}
    },
    "knowledgeBase": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "question", "answer"],
        "properties": {
          "tags": {"type": "array", "items": {"type": "string"}},
          "priority": {"type": "number"}
        }
      }
    },
    "content": {
      "type": "array",
      "items": {"type": "object", "required": ["id", "type", "title"]}
    },
    "settings": {
      "type": "object",
      "properties": {
        "operatingHours": {
          "type": "object",
          "properties": {
            "hours": {
              "type": "object",
              "additionalProperties": {
                "oneOf": [
                  {"type": "string", "enum": ["closed", "Closed"]},
                  {"type": "object", "required": ["open"]}
                ]
              }
            }
          }
        }
      }
    }
  }
}`

// Validate checks a raw profile document against the profile schema.
func Validate(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: not valid JSON", ErrInvalidBusiness)
	}

	schemaLoader := gojsonschema.NewStringLoader(profileSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBusiness, err)
	}

	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidBusiness, strings.Join(errs, "; "))
	}
	return nil
}
