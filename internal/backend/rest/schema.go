package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo/internal/service"
)

const (
	taskSchemaURL = "https://todo.local/schema/task.json"
	listSchemaURL = "https://todo.local/schema/list.json"
)

const taskSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "title"],
  "properties": {
    "id": {"type": ["string", "integer"]},
    "user_id": {"type": "string"},
    "title": {"type": "string"},
    "description": {"type": "string"},
    "status": {"type": "string"},
    "created": {"type": ["string", "null"]},
    "updated": {"type": ["string", "null"]}
  }
}`

// Backends that encode a nil slice send null for an empty page.
const listSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": ["array", "null"],
  "items": {"$ref": "task.json"}
}`

type schemas struct {
	task *jsonschema.Schema
	list *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(taskSchemaURL, strings.NewReader(taskSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add task schema: %w", err)
	}
	if err := compiler.AddResource(listSchemaURL, strings.NewReader(listSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add list schema: %w", err)
	}

	task, err := compiler.Compile(taskSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile task schema: %w", err)
	}
	list, err := compiler.Compile(listSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile list schema: %w", err)
	}
	return &schemas{task: task, list: list}, nil
}

// decodeValidated validates body against schema and decodes it into out.
// Response envelopes are unwrapped first.
func decodeValidated(schema *jsonschema.Schema, body []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return service.WrapError(service.ErrCodeInvalid, "malformed response body", err)
	}
	raw = unwrapEnvelope(raw)

	if err := schema.Validate(raw); err != nil {
		return service.WrapError(service.ErrCodeInvalid, "unexpected response shape", firstSchemaCause(err))
	}

	// Re-encode the unwrapped value so envelopes and bare payloads decode alike.
	data, err := json.Marshal(raw)
	if err != nil {
		return service.WrapError(service.ErrCodeInvalid, "malformed response body", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return service.WrapError(service.ErrCodeInvalid, "malformed response body", err)
	}
	return nil
}

// firstSchemaCause returns the first leaf validation error, which carries the
// most specific location and message.
func firstSchemaCause(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("%s: %s", loc, ve.Message)
}
