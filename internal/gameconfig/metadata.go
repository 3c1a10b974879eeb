package gameconfig

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// VectorSerialization selects how a vector-valued setting is written to an
// INI file.
type VectorSerialization string

const (
	// VectorCommaSeparated writes one key = v1,v2,v3 line.
	VectorCommaSeparated VectorSerialization = "comma_separated"
	// VectorIndexed writes one key[n] = v line per element.
	VectorIndexed VectorSerialization = "indexed"
	// VectorRepeated writes one bare key = v line per element.
	VectorRepeated VectorSerialization = "repeated"
)

// EnumerationEntry is one selectable value of an enumeration, with the label
// shown in pick lists.
type EnumerationEntry struct {
	DisplayName string `json:"display_name"`
	Value       string `json:"value"`
}

// Enumeration is a named set of selectable values referenced by enum-typed
// settings.
type Enumeration struct {
	Name   string             `json:"name"`
	Values []EnumerationEntry `json:"values"`
}

// MetadataEntry declares one named, located setting: its type, default,
// description, and provenance flags.
type MetadataEntry struct {
	Name                string              `json:"name"`
	Location            Location            `json:"location"`
	IsAutogenerated     bool                `json:"is_autogenerated,omitempty"` // inferred from an INI import
	IsBuiltIn           bool                `json:"is_built_in,omitempty"`      // shipped with the application
	IsDeprecated        bool                `json:"is_deprecated,omitempty"`
	VectorSerialization VectorSerialization `json:"vector_serialization,omitempty"`
	Description         string              `json:"description"`
	ValueType           ValueType           `json:"value_type"`
	DefaultValue        *Variant            `json:"default_value,omitempty"`
}

// EffectiveVectorSerialization returns the declared mode, defaulting to
// comma-separated.
func (e *MetadataEntry) EffectiveVectorSerialization() VectorSerialization {
	if e.VectorSerialization == "" {
		return VectorCommaSeparated
	}
	return e.VectorSerialization
}

// Metadata is a complete schema: declared enumerations plus one entry per
// known setting. It is either built-in, user-authored, or the effective merge
// of the two.
type Metadata struct {
	Enums   []Enumeration   `json:"enums,omitempty"`
	Entries []MetadataEntry `json:"entries"`
}

// FindEntry locates an entry by its (name, location) identity key. Returns
// (-1, nil) when absent.
func (m *Metadata) FindEntry(name string, location Location) (int, *MetadataEntry) {
	for i := range m.Entries {
		if m.Entries[i].Name == name && m.Entries[i].Location == location {
			return i, &m.Entries[i]
		}
	}
	return -1, nil
}

// FindEnum locates an enumeration by name. Returns (-1, nil) when absent.
func (m *Metadata) FindEnum(name string) (int, *Enumeration) {
	for i := range m.Enums {
		if m.Enums[i].Name == name {
			return i, &m.Enums[i]
		}
	}
	return -1, nil
}

// Validate checks schema integrity: every enum reference resolves, identity
// keys are unique, and every declared default conforms to its declared type.
// Violations are fatal; the application refuses to run with an inconsistent
// schema.
func (m *Metadata) Validate() error {
	seen := make(map[string]struct{}, len(m.Entries))
	for i := range m.Entries {
		entry := &m.Entries[i]
		key := entry.Name + "\x00" + entry.Location.String()
		if _, dup := seen[key]; dup {
			return schemaErrorf("duplicate entry %s [%s]", entry.Name, entry.Location)
		}
		seen[key] = struct{}{}

		if err := m.validateEnumRefs(entry.ValueType.Base); err != nil {
			return fmt.Errorf("entry %s [%s]: %w", entry.Name, entry.Location, err)
		}
		if entry.DefaultValue != nil {
			if err := entry.DefaultValue.ConformsTo(entry.ValueType); err != nil {
				return fmt.Errorf("entry %s [%s]: default value: %w", entry.Name, entry.Location, err)
			}
		}
	}
	return nil
}

func (m *Metadata) validateEnumRefs(base BaseType) error {
	switch base.Kind {
	case KindEnum:
		if _, e := m.FindEnum(base.Enum); e == nil {
			return schemaErrorf("enumeration %q is not declared", base.Enum)
		}
	case KindStruct:
		for _, field := range base.Fields {
			if err := m.validateEnumRefs(field.ValueType.Base); err != nil {
				return fmt.Errorf("field %q: %w", field.Name, err)
			}
		}
	}
	return nil
}

//go:embed default_config_metadata.json
var builtInMetadataJSON []byte

// LoadBuiltInMetadata parses and validates the schema shipped inside the
// binary. Every entry is stamped built-in.
func LoadBuiltInMetadata() (*Metadata, error) {
	var metadata Metadata
	if err := json.Unmarshal(builtInMetadataJSON, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse built-in config metadata: %w", err)
	}
	if err := metadata.Validate(); err != nil {
		return nil, fmt.Errorf("built-in config metadata is invalid: %w", err)
	}
	for i := range metadata.Entries {
		metadata.Entries[i].IsBuiltIn = true
		metadata.Entries[i].IsAutogenerated = false
	}
	return &metadata, nil
}

// LoadUserMetadata reads the user schema file. A missing file yields an empty
// schema; a present but invalid one is an error.
func LoadUserMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Metadata{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}
	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}
	if err := metadata.Validate(); err != nil {
		return nil, fmt.Errorf("metadata file %s is invalid: %w", path, err)
	}
	return &metadata, nil
}

// SaveUserMetadata writes the user schema file as indented JSON.
func SaveUserMetadata(path string, metadata *Metadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file %s: %w", path, err)
	}
	return nil
}
