package models

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ParameterDefinition describes one knob a model accepts (aspect ratio,
// duration, voice, ...). Callers pass matching keys in the request's open
// parameters map.
type ParameterDefinition struct {
	Name        string      `json:"name" validate:"required"`
	Type        string      `json:"type" validate:"required"`
	Required    *bool       `json:"required" validate:"required"` // Pointer to ensure presence
	Description string      `json:"description" validate:"required"`
	Example     interface{} `json:"example" validate:"required"`
}

// DescriptorParameters is the schema stored in ModelDescriptor.Parameters.
type DescriptorParameters struct {
	RequestParameters []ParameterDefinition `json:"request_parameters" validate:"required,dive"`
}

// ValidateDescriptorParameters checks that a descriptor's parameter schema
// is well-formed before it enters the catalog.
func ValidateDescriptorParameters(parameters JSON) error {
	bytes, err := json.Marshal(parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	var params DescriptorParameters
	if err := json.Unmarshal(bytes, &params); err != nil {
		return fmt.Errorf("invalid parameters structure: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}
