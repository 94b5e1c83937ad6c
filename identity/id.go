package identity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EntityID is a composite identity: two ids are equal only if both source and local id match
type EntityID struct {
	Source  Source
	LocalID uint64
}

// New creates an entity id
func New(source Source, localID uint64) EntityID {
	return EntityID{Source: source, LocalID: localID}
}

// Ref returns a pointer to a new entity id
func Ref(source Source, localID uint64) *EntityID {
	id := New(source, localID)
	return &id
}

// String returns source#local_id
func (id EntityID) String() string {
	return id.Source.String() + "#" + strconv.FormatUint(id.LocalID, 10)
}

// ParseID parses an id produced by String
func ParseID(text string) (EntityID, error) {
	index := strings.LastIndex(text, "#")
	if index == -1 {
		return EntityID{}, fmt.Errorf("invalid entity id: %q", text)
	}
	local, err := strconv.ParseUint(text[index+1:], 10, 64)
	if err != nil {
		return EntityID{}, fmt.Errorf("invalid entity id: %q: %w", text, err)
	}
	source, err := ParseSource(text[:index])
	if err != nil {
		return EntityID{}, err
	}
	return New(source, local), nil
}

// ParseLocal parses "#10" or "10" as a local id
func ParseLocal(text string) (uint64, error) {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "#"))
	value, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entity id: %q", text)
	}
	return value, nil
}

type encodedID struct {
	Kind    Kind   `json:"type"`
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	Path    string `json:"path,omitempty"`
	LocalID uint64 `json:"local_id"`
}

// MarshalJSON encodes id as a type tagged object
func (id EntityID) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodedID{Kind: id.Source.Kind, Name: id.Source.Name, URL: id.Source.URL, Path: id.Source.Path, LocalID: id.LocalID})
}

// UnmarshalJSON decodes a type tagged object
func (id *EntityID) UnmarshalJSON(data []byte) error {
	var encoded encodedID
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	switch encoded.Kind {
	case LocalKind, RegistryKind, GitKind, LocalTemplateKind:
	case "":
		encoded.Kind = LocalKind
	default:
		return fmt.Errorf("unsupported entity id type: %q", encoded.Kind)
	}
	id.Source = Source{Kind: encoded.Kind, Name: encoded.Name, URL: encoded.URL, Path: encoded.Path}
	id.LocalID = encoded.LocalID
	return nil
}
