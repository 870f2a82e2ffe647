package sync

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// payloadSchema is the minimum inbound contract: a type tag and the GHL
// location the event belongs to. Everything else is event-specific and
// passed through opaquely.
const payloadSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "locationId"],
  "properties": {
    "type":          {"type": "string", "minLength": 1},
    "locationId":    {"type": "string", "minLength": 1},
    "contactId":     {"type": "string"},
    "opportunityId": {"type": "string"},
    "appointmentId": {"type": "string"},
    "timestamp":     {"type": "string"},
    "data":          {"type": "object"}
  }
}`

// compilePayloadSchema builds the validator once at startup; the schema is a
// compile-time constant so failure here is a programming error.
func compilePayloadSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payloadSchema))
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("ghl-webhook.json", doc); err != nil {
		panic(err)
	}
	sch, err := c.Compile("ghl-webhook.json")
	if err != nil {
		panic(err)
	}
	return sch
}
