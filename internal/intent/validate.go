package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// payloadSchema guards the wire shape of incoming payloads before any
// handler touches them. Entities with no resolved values are legal; the
// recognizer omits the list for exact-text entities.
const payloadSchema = `{
  "type": "object",
  "required": ["intentName"],
  "properties": {
    "intentName": { "type": "string", "minLength": 1 },
    "utterance": { "type": "string" },
    "conversationId": { "type": "string" },
    "coordinates": { "type": "string" },
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "text"],
        "properties": {
          "kind": { "type": "string", "minLength": 1 },
          "text": { "type": "string" },
          "resolvedValues": {
            "type": "array",
            "items": { "type": "string" }
          }
        }
      }
    }
  }
}`

var compiledSchema = gojsonschema.NewStringLoader(payloadSchema)

// ParsePayload validates raw JSON against the payload schema and decodes it.
func ParsePayload(raw []byte) (*Payload, error) {
	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("payload validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("invalid intent payload: %s", strings.Join(msgs, "; "))
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode intent payload: %w", err)
	}
	return &p, nil
}
