package normalization

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

// RawFieldsFromStruct converts a protobuf Struct (as sent by upstream
// services) into raw fields. Numbers arrive as float64.
func RawFieldsFromStruct(s *structpb.Struct) entity.RawFields {
	if s == nil {
		return entity.RawFields{}
	}
	return entity.RawFields(s.AsMap())
}

// RawFieldsFromJSON decodes a JSON object through structpb so that numeric
// and nested values take the same shapes as Struct input.
func RawFieldsFromJSON(data []byte) (entity.RawFields, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode raw fields: %w", err)
	}
	return RawFieldsFromStruct(&s), nil
}

// RawFieldsToStruct is the inverse of RawFieldsFromStruct.
func RawFieldsToStruct(raw entity.RawFields) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(normalizeForStruct(raw))
	if err != nil {
		return nil, fmt.Errorf("encode raw fields: %w", err)
	}
	return s, nil
}

// normalizeForStruct rewrites typed slices that structpb.NewValue rejects.
func normalizeForStruct(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case []map[string]any:
			list := make([]any, len(t))
			for i, m := range t {
				list[i] = normalizeForStruct(m)
			}
			out[k] = list
		case map[string]any:
			out[k] = normalizeForStruct(t)
		case []any:
			list := make([]any, len(t))
			for i, item := range t {
				if m, ok := item.(map[string]any); ok {
					list[i] = normalizeForStruct(m)
				} else {
					list[i] = item
				}
			}
			out[k] = list
		default:
			out[k] = v
		}
	}
	return out
}
