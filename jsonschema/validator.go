// Package jsonschema validates converted records against the record JSON
// schema using github.com/santhosh-tekuri/jsonschema/v5.
package jsonschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/depconv"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var recordSchema []byte

const schemaURL = "record.schema.json"

// Ensure Validator implements depconv.RecordValidator at compile time.
var _ depconv.RecordValidator = (*Validator)(nil)

// Validator checks the JSON form of records against a schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded record schema.
func NewValidator() (*Validator, error) {
	return NewValidatorFromReader(bytes.NewReader(recordSchema))
}

// NewValidatorFromReader compiles a schema read from r.
func NewValidatorFromReader(r io.Reader) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, r); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// ValidateRecord returns EINVALID if the record's JSON does not match the
// schema or its participant count disagrees with its people list.
func (v *Validator) ValidateRecord(rec *depconv.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return depconv.Errorf(depconv.EINTERNAL, "marshal record: %v", err)
	}
	return v.Validate(data)
}

// Validate checks raw record JSON.
func (v *Validator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return depconv.Errorf(depconv.EINVALID, "unmarshal record: %v", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return depconv.Errorf(depconv.EINVALID, "record does not match schema: %v", err)
	}

	obj := doc.(map[string]any)
	people, _ := obj["people_list"].([]any)
	if n, _ := obj["participants_number"].(float64); int(n) != len(people) {
		return depconv.Errorf(depconv.EINVALID, "participants_number %v does not match %d people", obj["participants_number"], len(people))
	}
	return nil
}
