package schema

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/field"
)

// ID is the $id of the field document schema.
const ID = "https://github.com/aretw0/quiver/schemas/field.json"

var statusType = reflect.TypeOf(domain.Status(0))

// Field reflects the schema of domain.VectorField.
func Field() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t != statusType {
				return nil
			}
			var names []any
			for s := domain.StatusOK; s <= domain.StatusDegenerate; s++ {
				names = append(names, s.String())
			}
			return &jsonschema.Schema{Type: "string", Enum: names}
		},
	}
	s := reflector.Reflect(&domain.VectorField{})
	s.ID = ID
	s.Title = "Direction field"

	if p, ok := s.Properties.Get("scaling"); ok {
		p.Enum = nil
		for _, sc := range field.Scalings {
			p.Enum = append(p.Enum, string(sc))
		}
	}
	return s
}

// FieldJSON returns the indented Field schema.
func FieldJSON() ([]byte, error) {
	return json.MarshalIndent(Field(), "", "  ")
}
