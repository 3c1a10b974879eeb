package gameconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ark_manager/internal/ini"
	"ark_manager/internal/logger"
)

// IniDirectory returns the directory the game reads its INI files from,
// relative to a server installation.
func IniDirectory(installDir string) string {
	return filepath.Join(installDir, "ShooterGame", "Saved", "Config", "WindowsServer")
}

// UnrealEscape applies the game's value escaping: backslashes and double
// quotes are escaped, and any value containing a character outside
// [A-Za-z0-9./] is wrapped in double quotes. The game binaries parse this
// format with fixed expectations, so the rule is reproduced exactly.
func UnrealEscape(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	for _, r := range escaped {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '/' {
			continue
		}
		return `"` + escaped + `"`
	}
	return escaped
}

// UnrealUnescape reverses UnrealEscape on values read back from INI files.
func UnrealUnescape(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}
	value = strings.ReplaceAll(value, `\"`, `"`)
	return strings.ReplaceAll(value, `\\`, `\`)
}

// UpdateINIs projects the server's concrete overrides onto its on-disk INI
// files. Every (file, section) touched by either the schema or the overrides
// is loaded (or created), stale keys for settings with no override are
// pruned unless the INIs are externally managed, and every override is
// written using its schema-declared vector serialization mode. Files are
// saved with values verbatim; escaping already happened here.
func UpdateINIs(metadata *Metadata, entries *Entries, installDir string, externallyManaged bool, log *logger.Logger) error {
	dir := IniDirectory(installDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create INI directory %s: %w", dir, err)
	}

	documents := make(map[IniFile]*ini.Document)
	loadDocument := func(file IniFile) (*ini.Document, error) {
		if doc, ok := documents[file]; ok {
			return doc, nil
		}
		doc, err := ini.LoadOrNew(filepath.Join(dir, file.FileName()))
		if err != nil {
			return nil, fmt.Errorf("failed to load INI file %s: %w", file.FileName(), err)
		}
		documents[file] = doc
		return doc, nil
	}

	// Prune keys for schema settings the server no longer overrides, so the
	// file reflects only intentional overrides
	if !externallyManaged {
		for i := range metadata.Entries {
			meta := &metadata.Entries[i]
			if meta.Location.Kind != LocationIniOption {
				continue
			}
			if _, entry := entries.Find(meta.Name, meta.Location); entry != nil {
				continue
			}
			doc, err := loadDocument(meta.Location.File)
			if err != nil {
				return err
			}
			if section := doc.FindSection(string(meta.Location.Section)); section != nil {
				name := meta.Name
				if section.DeleteFunc(func(key string) bool {
					return key == name || strings.HasPrefix(key, name+"[")
				}) {
					log.Debug("Removed %s:[%s] %s", meta.Location.File, meta.Location.Section, meta.Name)
				}
			}
		}
	}

	for i := range entries.Entries {
		entry := &entries.Entries[i]
		if entry.MetaLocation.Kind != LocationIniOption {
			continue
		}
		doc, err := loadDocument(entry.MetaLocation.File)
		if err != nil {
			return err
		}
		writeEntry(doc, metadata, entry, log)
	}

	for file, doc := range documents {
		path := filepath.Join(dir, file.FileName())
		log.Debug("Writing INI file %s", path)
		if err := doc.Save(path); err != nil {
			return fmt.Errorf("failed to write INI file %s: %w", path, err)
		}
	}
	return nil
}

// writeEntry serializes one override into its section. Scalar structs are
// written as a single parenthesized literal; other scalars get Unreal
// escaping; vectors follow the schema's declared serialization mode.
func writeEntry(doc *ini.Document, metadata *Metadata, entry *Entry, log *logger.Logger) {
	section := doc.Section(string(entry.MetaLocation.Section))
	serialized := entry.Value.String()

	if entry.Value.Quantity != QuantityVector {
		if entry.Value.Value.Kind != KindStruct {
			serialized = UnrealEscape(serialized)
		}
		log.Debug("Setting %s:[%s] %s = %s", entry.MetaLocation.File, entry.MetaLocation.Section, entry.MetaName, serialized)
		section.Set(entry.MetaName, serialized)
		return
	}

	mode := VectorCommaSeparated
	if _, meta := metadata.FindEntry(entry.MetaName, entry.MetaLocation); meta != nil {
		mode = meta.EffectiveVectorSerialization()
	}

	switch mode {
	case VectorIndexed:
		prefix := entry.MetaName + "["
		section.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
		for i, value := range entry.Value.Values {
			key := fmt.Sprintf("%s[%d]", entry.MetaName, i)
			log.Debug("Setting %s:[%s] %s = %s", entry.MetaLocation.File, entry.MetaLocation.Section, key, value)
			section.Set(key, value.String())
		}
	case VectorRepeated:
		section.Delete(entry.MetaName)
		for _, value := range entry.Value.Values {
			log.Debug("Setting %s:[%s] %s = %s", entry.MetaLocation.File, entry.MetaLocation.Section, entry.MetaName, value)
			section.Append(entry.MetaName, value.String())
		}
	default:
		log.Debug("Setting %s:[%s] %s = %s", entry.MetaLocation.File, entry.MetaLocation.Section, entry.MetaName, serialized)
		section.Set(entry.MetaName, serialized)
	}
}

// ImportINIWithMetadata reads one INI file and resolves every key against the
// schema. Values equal to the schema default are dropped (defaults stay
// implicit); parse failures and unknown keys are logged and skipped so a
// partially damaged file still yields every salvageable override.
func ImportINIWithMetadata(metadata *Metadata, iniPath string, log *logger.Logger) (*Entries, error) {
	doc, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file %s: %w", iniPath, err)
	}

	file := NormalizeIniFile(filepath.Base(iniPath))
	entries := &Entries{}

	for _, section := range doc.Sections {
		location := IniLocation(file, NormalizeIniSection(section.Name))
		for _, property := range section.Properties {
			key, raw := property.Key, property.Value
			// Indexed keys resolve against their base name
			name, indexed := splitIndexedKey(key)

			_, meta := metadata.FindEntry(name, location)
			if meta == nil {
				log.Debug("Unknown key %s [%s], skipping", key, location)
				continue
			}

			if meta.ValueType.Quantity == QuantityScalar && meta.ValueType.Base.Kind == KindString {
				raw = UnrealUnescape(raw)
			}

			variant, err := VariantFromText(meta.ValueType, raw)
			if err != nil {
				log.Error("Failed to convert %s [%s] to a %s, skipping: %v", key, location, meta.ValueType, err)
				continue
			}

			if indexed || meta.EffectiveVectorSerialization() == VectorRepeated {
				appendVectorElements(entries, meta, variant)
				continue
			}

			if meta.DefaultValue != nil && meta.DefaultValue.Equal(variant) {
				log.Debug("Default %s [%s]", key, location)
				continue
			}
			entries.Upsert(Entry{
				MetaName:     meta.Name,
				MetaLocation: meta.Location,
				Value:        variant,
			})
		}
	}

	return entries, nil
}

// splitIndexedKey strips a trailing [n] suffix from an indexed vector key.
func splitIndexedKey(key string) (string, bool) {
	if !strings.HasSuffix(key, "]") {
		return key, false
	}
	open := strings.LastIndex(key, "[")
	if open <= 0 || open == len(key)-2 {
		return key, false
	}
	for _, r := range key[open+1 : len(key)-1] {
		if r < '0' || r > '9' {
			return key, false
		}
	}
	return key[:open], true
}

// appendVectorElements accumulates elements of a vector setting that arrives
// across multiple lines (indexed or repeated keys).
func appendVectorElements(entries *Entries, meta *MetadataEntry, variant Variant) {
	values := variant.Values
	if variant.Quantity == QuantityScalar {
		values = []Value{variant.Value}
	}
	if i, existing := entries.Find(meta.Name, meta.Location); i >= 0 {
		existing.Value.Values = append(existing.Value.Values, values...)
		return
	}
	entries.Entries = append(entries.Entries, Entry{
		MetaName:     meta.Name,
		MetaLocation: meta.Location,
		Value:        Vector(values),
	})
}

// ImportConfigFile infers a full schema and override set from an INI file
// nothing is known about. Every inferred entry is flagged autogenerated so a
// later import or hand edit can safely supersede it.
func ImportConfigFile(path string, log *logger.Logger) (*Metadata, *Entries, error) {
	doc, err := ini.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load INI file %s: %w", path, err)
	}

	file := NormalizeIniFile(filepath.Base(path))
	metadata := &Metadata{}
	entries := &Entries{}

	for _, section := range doc.Sections {
		location := IniLocation(file, NormalizeIniSection(section.Name))
		for _, property := range section.Properties {
			valueType := InferValueType(property.Value)
			value, err := VariantFromText(valueType, property.Value)
			if err != nil {
				log.Warn("Failed to parse value %q as %s: %v", property.Value, valueType, err)
				continue
			}
			defaultValue := value
			metadata.Entries = append(metadata.Entries, MetadataEntry{
				Name:            property.Key,
				Location:        location,
				IsAutogenerated: true,
				Description:     "Auto imported - validate the configuration for this before using it",
				ValueType:       valueType,
				DefaultValue:    &defaultValue,
			})
			entries.Entries = append(entries.Entries, Entry{
				MetaName:     property.Key,
				MetaLocation: location,
				Value:        value,
			})
			log.Debug("Imported %s [%s] as %s = %s", property.Key, location, valueType, value)
		}
	}

	return metadata, entries, nil
}
