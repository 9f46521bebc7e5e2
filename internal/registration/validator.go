package registration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/wholesale-toko/internal/common"
	"github.com/noah-isme/wholesale-toko/internal/obs"
)

var messages = map[string]string{
	"gstin":           "must be a valid 15-character GSTIN",
	"in_mobile":       "must be a 10-digit Indian mobile number",
	"pincode":         "must be a 6-digit pincode",
	"strong_password": "must be at least 8 characters with uppercase, lowercase, number and special character",
	"eqfield":         "passwords do not match",
	"datetime":        "must be a time in HH:MM format",
}

// Validator checks registration steps.
type Validator struct {
	v *validator.Validate
}

// NewValidator registers the registration tags on v, or on a fresh validator when v is nil.
func NewValidator(v *validator.Validate) (*Validator, error) {
	if v == nil {
		v = common.NewValidator()
	}
	if err := RegisterValidations(v); err != nil {
		return nil, fmt.Errorf("register validations: %w", err)
	}
	return &Validator{v: v}, nil
}

// ValidateStep decodes payload as the given step and returns every failed field.
// An undecodable payload is an error; failed rules are not.
func (val *Validator) ValidateStep(step Step, payload []byte) ([]common.FieldError, error) {
	dst := newPayload(step)
	if dst == nil {
		return nil, fmt.Errorf("%q: %w", step, ErrUnknownStep)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return nil, fmt.Errorf("decode %s step: %w", step, err)
	}
	fields := val.check(dst)
	observe(string(step), fields)
	return fields, nil
}

// ValidateApplication validates all four steps at once. Field paths are prefixed with the step.
func (val *Validator) ValidateApplication(app Application) []common.FieldError {
	fields := val.check(&app)
	observe("application", fields)
	return fields
}

func (val *Validator) check(s any) []common.FieldError {
	if err := val.v.Struct(s); err != nil {
		fields := common.FieldErrors(err)
		for i := range fields {
			if msg, ok := messages[fields[i].Rule]; ok {
				fields[i].Message = msg
			}
			if fields[i].Rule == "required" && strings.HasPrefix(lastSegment(fields[i].Field), "accept") {
				fields[i].Message = "must be accepted"
			}
		}
		return fields
	}
	return []common.FieldError{}
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func observe(step string, fields []common.FieldError) {
	if obs.RegistrationValidationTotal == nil {
		return
	}
	result := "valid"
	if len(fields) > 0 {
		result = "invalid"
	}
	obs.RegistrationValidationTotal.WithLabelValues(step, result).Inc()
}
