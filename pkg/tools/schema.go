package tools

import (
	"github.com/getkin/kin-openapi/openapi3"
)

func objectSchema(required ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Properties = openapi3.Schemas{}
	if len(required) > 0 {
		s.Required = required
	}
	return s
}

func withProperty(s *openapi3.Schema, name string, prop *openapi3.Schema, description string) *openapi3.Schema {
	prop.Description = description
	s.Properties[name] = openapi3.NewSchemaRef("", prop)
	return s
}

func stringProp(def string) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	if def != "" {
		s.Default = def
	}
	return s
}

func integerProp(def int) *openapi3.Schema {
	s := openapi3.NewIntegerSchema()
	s.Default = def
	return s
}
