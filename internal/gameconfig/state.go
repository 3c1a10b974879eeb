package gameconfig

import (
	"fmt"

	"ark_manager/internal/logger"
)

// MetadataState holds the three schemas the application works with: the
// immutable built-in schema, the user's overrides and additions, and the
// effective schema derived from merging the two. The effective schema is
// rebuilt from scratch after every mutation; there is no dependency tracking.
//
// Not safe for concurrent mutation; callers serialize edits through a single
// owner.
type MetadataState struct {
	builtIn   *Metadata
	user      *Metadata
	effective *Metadata
	logger    *logger.Logger
}

// NewMetadataState derives the initial effective schema from the built-in and
// user schemas.
func NewMetadataState(builtIn, user *Metadata, log *logger.Logger) *MetadataState {
	s := &MetadataState{builtIn: builtIn, user: user, logger: log}
	s.rebuildEffective()
	return s
}

// BuiltIn returns the schema shipped with the application.
func (s *MetadataState) BuiltIn() *Metadata {
	return s.builtIn
}

// User returns the user-authored schema.
func (s *MetadataState) User() *Metadata {
	return s.user
}

// Effective returns the merged schema.
func (s *MetadataState) Effective() *Metadata {
	return s.effective
}

// AddUserEntry appends a new user entry and returns its index in the user
// schema. Manual edits are never auto-overridable, so the provenance flags
// are forced off.
func (s *MetadataState) AddUserEntry(entry MetadataEntry) (int, error) {
	entry.IsAutogenerated = false
	entry.IsBuiltIn = false
	if i, _ := s.user.FindEntry(entry.Name, entry.Location); i >= 0 {
		return -1, schemaErrorf("duplicate entry %s [%s]", entry.Name, entry.Location)
	}
	s.user.Entries = append(s.user.Entries, entry)
	s.rebuildEffective()
	return len(s.user.Entries) - 1, nil
}

// ReplaceUserEntry overwrites the user entry at the given index.
func (s *MetadataState) ReplaceUserEntry(index int, entry MetadataEntry) error {
	if index < 0 || index >= len(s.user.Entries) {
		return schemaErrorf("no user entry at index %d", index)
	}
	entry.IsAutogenerated = false
	entry.IsBuiltIn = false
	s.user.Entries[index] = entry
	s.rebuildEffective()
	return nil
}

// RemoveUserOverride deletes the user entry at the given index.
func (s *MetadataState) RemoveUserOverride(index int) error {
	if index < 0 || index >= len(s.user.Entries) {
		return schemaErrorf("no user entry at index %d", index)
	}
	s.user.Entries = append(s.user.Entries[:index], s.user.Entries[index+1:]...)
	s.rebuildEffective()
	return nil
}

// ImportMetadata merges freshly inferred schema entries into the user schema.
// Precedence is asymmetric:
//
//   - an existing autogenerated user entry is overwritten (prior auto-imports
//     are disposable);
//   - an existing hand-edited user entry is skipped (human intent wins);
//   - when only a built-in entry exists, the import inherits its value type
//     and the default is re-parsed against it, correcting inference mistakes;
//   - otherwise the inferred entry is added as-is.
//
// A re-parse failure fails the whole import; no partial state is kept.
func (s *MetadataState) ImportMetadata(imported *Metadata) error {
	for _, newEntry := range imported.Entries {
		if i, userEntry := s.user.FindEntry(newEntry.Name, newEntry.Location); userEntry != nil {
			if userEntry.IsAutogenerated {
				s.logger.Debug("Replacing [%s] %s", userEntry.Location, userEntry.Name)
				s.user.Entries[i] = newEntry
			} else {
				s.logger.Debug("Skipping [%s] %s - a user override already exists", userEntry.Location, userEntry.Name)
			}
			continue
		}

		if _, builtInEntry := s.builtIn.FindEntry(newEntry.Name, newEntry.Location); builtInEntry != nil {
			// Trust the built-in type over the inferred one
			newEntry.ValueType = builtInEntry.ValueType
			if newEntry.DefaultValue != nil {
				raw := newEntry.DefaultValue.String()
				coerced, err := VariantFromText(newEntry.ValueType, raw)
				if err != nil {
					return fmt.Errorf("failed to import value %q with type %s: %w", raw, newEntry.ValueType, err)
				}
				newEntry.DefaultValue = &coerced
			}
		}

		s.logger.Debug("Adding [%s] %s", newEntry.Location, newEntry.Name)
		s.user.Entries = append(s.user.Entries, newEntry)
	}
	s.rebuildEffective()
	return nil
}

// rebuildEffective recomputes the merged schema: a clone of the built-in
// schema with user enums and entries replacing identity matches in place and
// unmatched ones appended.
func (s *MetadataState) rebuildEffective() {
	effective := &Metadata{
		Enums:   append([]Enumeration(nil), s.builtIn.Enums...),
		Entries: append([]MetadataEntry(nil), s.builtIn.Entries...),
	}

	for _, userEnum := range s.user.Enums {
		if i, _ := s.builtIn.FindEnum(userEnum.Name); i >= 0 {
			effective.Enums[i] = userEnum
		} else {
			effective.Enums = append(effective.Enums, userEnum)
		}
	}

	for _, userEntry := range s.user.Entries {
		if i, _ := s.builtIn.FindEntry(userEntry.Name, userEntry.Location); i >= 0 {
			effective.Entries[i] = userEntry
		} else {
			effective.Entries = append(effective.Entries, userEntry)
		}
	}

	s.effective = effective
}
