package resolved

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes the snapshot as indented JSON
func Encode(writer io.Writer, view *Schema) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(view); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return nil
}

// Decode reads a JSON snapshot
func Decode(reader io.Reader) (*Schema, error) {
	view := New()
	if err := json.NewDecoder(reader).Decode(view); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	if view.TypeAliases == nil {
		view.TypeAliases = map[string]*TypeAlias{}
	}
	if view.Models == nil {
		view.Models = map[string]*Model{}
	}
	for name, alias := range view.TypeAliases {
		if alias == nil {
			return nil, fmt.Errorf("failed to decode schema: type alias %q is null", name)
		}
		if alias.Name == "" {
			alias.Name = name
		}
	}
	for name, model := range view.Models {
		if model == nil {
			return nil, fmt.Errorf("failed to decode schema: model %q is null", name)
		}
		if model.Name == "" {
			model.Name = name
		}
		for i, field := range model.Fields {
			if field == nil {
				return nil, fmt.Errorf("failed to decode schema: field %d of model %q is null", i, name)
			}
		}
	}
	return view, nil
}
