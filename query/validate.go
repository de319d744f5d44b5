package query

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	schemaOnce   sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr    error
)

func matchQuerySchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		loader := gojsonschema.NewStringLoader(matchQuerySchemaJSON)
		compiledSchema, schemaErr = gojsonschema.NewSchema(loader)
	})
	return compiledSchema, schemaErr
}

// Validate checks that doc is a structurally valid MatchQuery JSON
// document before attempting to parse it into a Query tree. A schema
// failure surfaces as a *ValidationError wrapping ErrInvalidDocument with
// the schema validator's per-field messages.
func Validate(doc []byte) error {
	schema, err := matchQuerySchema()
	if err != nil {
		return fmt.Errorf("query: compiling validation schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("query: validating document: %w", err)
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			details[i] = e.String()
		}
		return &ValidationError{Details: details}
	}
	return nil
}

// ParseJSON validates and parses doc into a Query tree.
func ParseJSON(doc []byte) (Query, error) {
	if err := Validate(doc); err != nil {
		return Query{}, err
	}
	var q Query
	if err := json.Unmarshal(doc, &q); err != nil {
		return Query{}, fmt.Errorf("query: parsing document: %w", err)
	}
	return q, nil
}
