package levelgen

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/voidshard/levelgen/internal/placement"
	"github.com/voidshard/levelgen/internal/shape"
)

// Schema returns a JSON schema describing LevelConfig, for editors that
// validate level config files.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		Mapper:                    schemaMapper,
	}
	schema := reflector.Reflect(new(LevelConfig))
	schema.Title = "Level Config"
	schema.Description = "Bounds, roads & placement jobs for a generated level"
	return schema
}

// SchemaJSON returns Schema() as indented json
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

// schemaMapper writes enums we marshal as text as strings
func schemaMapper(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeOf(shape.Kind(0)):
		return &jsonschema.Schema{
			Type:        "string",
			Description: "shape kind",
			Enum:        enum(Box.String(), Circle.String(), Polygon.String(), Capsule.String(), Composite.String()),
		}
	case reflect.TypeOf(placement.Mode(0)):
		return &jsonschema.Schema{
			Type:        "string",
			Description: "where candidates are drawn from",
			Enum:        enum(Free.String(), NearRoad.String()),
		}
	}
	return nil
}

func enum(in ...string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
