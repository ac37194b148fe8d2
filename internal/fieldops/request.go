package fieldops

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/viraforge/viraforge/internal/project"
)

// RequestError is a malformed operations request. It is terminal before any
// side effect.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return "invalid operations request: " + e.Reason
}

// Options are the per-request toggles.
type Options struct {
	DryRun      bool `json:"dry_run,omitempty"`
	AutoConfirm bool `json:"auto_confirm,omitempty"`
}

// Request is a parsed and validated operations file.
type Request struct {
	OperationType string          `json:"operation_type"`
	TargetService project.Service `json:"target_service"`
	Operations    []Operation     `json:"-"`
	Options       Options         `json:"options,omitempty"`
}

// rawRequest mirrors the wire shape before operation construction.
type rawRequest struct {
	OperationType   string          `json:"operation_type"`
	TargetService   project.Service `json:"target_service"`
	FieldOperations []rawOperation  `json:"field_operations"`
	Options         Options         `json:"options"`
}

// LoadRequest reads and validates an operations file.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read operations file: %w", err)
	}
	return ParseRequest(data)
}

// ParseRequest validates the request against the embedded JSON Schema, then
// structurally, and builds the operation list. Any failure is a RequestError.
func ParseRequest(data []byte) (*Request, error) {
	if err := validateAgainstSchema(data); err != nil {
		return nil, err
	}

	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &RequestError{Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}

	if raw.OperationType != "modify_service" {
		return nil, &RequestError{Reason: fmt.Sprintf("invalid operation_type %q", raw.OperationType)}
	}
	if raw.TargetService.Name == "" {
		return nil, &RequestError{Reason: "target_service requires 'name'"}
	}
	if raw.TargetService.Table == "" {
		return nil, &RequestError{Reason: "target_service requires 'table'"}
	}
	if len(raw.FieldOperations) == 0 {
		return nil, &RequestError{Reason: "no field operations specified"}
	}

	req := &Request{
		OperationType: raw.OperationType,
		TargetService: raw.TargetService,
		Options:       raw.Options,
	}
	for i, rawOp := range raw.FieldOperations {
		op, err := NewOperation(rawOp)
		if err != nil {
			reason := err.Error()
			if re, ok := err.(*RequestError); ok {
				reason = re.Reason
			}
			return nil, &RequestError{Reason: fmt.Sprintf("field_operations[%d]: %s", i, reason)}
		}
		req.Operations = append(req.Operations, op)
	}

	return req, nil
}

func validateAgainstSchema(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(requestSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &RequestError{Reason: fmt.Sprintf("schema validation failed to run: %v", err)}
	}
	if !result.Valid() {
		msgs := ""
		for _, desc := range result.Errors() {
			if msgs != "" {
				msgs += "; "
			}
			msgs += desc.String()
		}
		return &RequestError{Reason: msgs}
	}
	return nil
}
