// Package validation checks resident submissions against the fault intake
// schema before the core accepts them.
package validation

import (
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

// faultInputSchema is the intake contract: a Lithuanian mobile number,
// a description long enough to act on, and a real street address.
var faultInputSchema = map[string]interface{}{
	"type": "object",
	"required": []interface{}{
		"reporterName", "reporterEmail", "reporterPhone",
		"address", "type", "description",
	},
	"properties": map[string]interface{}{
		"reporterName": map[string]interface{}{
			"type":      "string",
			"minLength": 2,
		},
		"reporterEmail": map[string]interface{}{
			"type":   "string",
			"format": "email",
		},
		"reporterPhone": map[string]interface{}{
			"type":    "string",
			"pattern": `^\+370[0-9]{8}$`,
		},
		"address": map[string]interface{}{
			"type":      "string",
			"minLength": 5,
		},
		"type": map[string]interface{}{
			"type": "string",
			"enum": faultTypeEnum(),
		},
		"description": map[string]interface{}{
			"type":      "string",
			"minLength": 10,
			"maxLength": 500,
		},
	},
}

func faultTypeEnum() []interface{} {
	enum := make([]interface{}, len(models.FaultTypes))
	for i, t := range models.FaultTypes {
		enum[i] = string(t)
	}
	return enum
}

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(faultInputSchema))
	})
	return schema, schemaErr
}

// ValidateFaultInput checks the submission against the intake schema and
// returns a validation error listing every violated field contract.
func ValidateFaultInput(input *models.NewFaultInput) error {
	s, err := compiledSchema()
	if err != nil {
		return commonerrors.NewValidationFailedError(err.Error())
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return commonerrors.NewValidationFailedError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		details[i] = desc.String()
	}
	return commonerrors.NewValidationFailedError(strings.Join(details, "; "))
}
