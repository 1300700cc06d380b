package tools

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/esgate/pkg/domain"
)

// validateArgs checks raw arguments against a tool schema.
func validateArgs(schema *openapi3.Schema, args map[string]any) error {
	if schema == nil {
		return nil
	}
	// The schema visitor only understands plain JSON values, so json.Number
	// arguments are validated through a float64 copy.
	plain, err := plainJSON(args)
	if err != nil {
		return domain.NewValidationError(domain.ErrInvalidArgument, "invalid arguments: %v", err)
	}
	err = schema.VisitJSON(plain)
	if err == nil {
		return nil
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if ptr := se.JSONPointer(); len(ptr) > 0 {
			return domain.NewValidationError(domain.ErrInvalidArgument, "invalid argument %s: %s", strings.Join(ptr, "."), se.Reason)
		}
		return domain.NewValidationError(domain.ErrInvalidArgument, "invalid arguments: %s", se.Reason)
	}
	return domain.NewValidationError(domain.ErrInvalidArgument, "invalid arguments: %v", err)
}

// decodeArgs decodes validated arguments into a typed struct using mapstructure tags.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: false,
		DecodeHook:       wholeNumberHook,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return domain.NewValidationError(domain.ErrInvalidArgument, "invalid arguments: %v", err)
	}
	return nil
}

// wholeNumberHook lets integer fields accept numbers written with a fraction part,
// such as 5.0. The schema has already rejected non-whole values.
func wholeNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if _, err := n.Int64(); err == nil {
			return data, nil
		}
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
	}
	return data, nil
}

func plainJSON(args map[string]any) (any, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
