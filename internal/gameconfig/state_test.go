package gameconfig

import (
	"testing"

	"ark_manager/internal/logger"
)

func builtInFixture() *Metadata {
	port := Scalar(NewInteger(7777))
	motd := Scalar(NewString("Welcome"))
	return &Metadata{
		Enums: []Enumeration{
			{Name: "ServerPlatform", Values: []EnumerationEntry{
				{DisplayName: "PC Only", Value: "PC"},
				{DisplayName: "All Platforms", Value: "ALL"},
			}},
		},
		Entries: []MetadataEntry{
			{
				Name:         "Port",
				Location:     MapURLOptionLocation,
				IsBuiltIn:    true,
				ValueType:    ScalarType(IntegerBase),
				DefaultValue: &port,
			},
			{
				Name:         "Message",
				Location:     IniLocation(IniFileGameUserSettings, SectionMessageOfTheDay),
				IsBuiltIn:    true,
				ValueType:    ScalarType(StringBase),
				DefaultValue: &motd,
			},
		},
	}
}

func TestEffectiveSchemaStartsAsBuiltIn(t *testing.T) {
	state := NewMetadataState(builtInFixture(), &Metadata{}, logger.New())

	effective := state.Effective()
	if len(effective.Entries) != 2 {
		t.Fatalf("Expected 2 effective entries, got %d", len(effective.Entries))
	}
	if len(effective.Enums) != 1 {
		t.Fatalf("Expected 1 effective enum, got %d", len(effective.Enums))
	}
}

func TestUserEntryOverridesBuiltInInPlace(t *testing.T) {
	state := NewMetadataState(builtInFixture(), &Metadata{}, logger.New())

	override := Scalar(NewInteger(7778))
	_, err := state.AddUserEntry(MetadataEntry{
		Name:         "Port",
		Location:     MapURLOptionLocation,
		ValueType:    ScalarType(IntegerBase),
		DefaultValue: &override,
	})
	if err != nil {
		t.Fatalf("AddUserEntry failed: %v", err)
	}

	effective := state.Effective()
	if len(effective.Entries) != 2 {
		t.Fatalf("Override should replace in place, got %d entries", len(effective.Entries))
	}
	// The override keeps the built-in entry's position
	if effective.Entries[0].Name != "Port" {
		t.Fatalf("Expected Port first, got %s", effective.Entries[0].Name)
	}
	if v, _ := effective.Entries[0].DefaultValue.TryInt(); v != 7778 {
		t.Fatalf("Expected overridden default 7778, got %d", v)
	}
	// The built-in schema itself is untouched
	if v, _ := state.BuiltIn().Entries[0].DefaultValue.TryInt(); v != 7777 {
		t.Fatalf("Built-in schema was mutated: got %d", v)
	}
}

func TestUserEntryAppendsWhenUnmatched(t *testing.T) {
	state := NewMetadataState(builtInFixture(), &Metadata{}, logger.New())

	_, err := state.AddUserEntry(MetadataEntry{
		Name:      "CustomSetting",
		Location:  IniLocation(IniFileGame, SectionShooterGameMode),
		ValueType: ScalarType(BoolBase),
	})
	if err != nil {
		t.Fatalf("AddUserEntry failed: %v", err)
	}

	effective := state.Effective()
	if len(effective.Entries) != 3 {
		t.Fatalf("Expected 3 effective entries, got %d", len(effective.Entries))
	}
	if effective.Entries[2].Name != "CustomSetting" {
		t.Fatalf("New entry should append at the end, got %s", effective.Entries[2].Name)
	}
}

func TestAddUserEntryForcesProvenanceFlagsOff(t *testing.T) {
	state := NewMetadataState(builtInFixture(), &Metadata{}, logger.New())

	index, err := state.AddUserEntry(MetadataEntry{
		Name:            "CustomSetting",
		Location:        CommandLineOptionLocation,
		IsAutogenerated: true,
		IsBuiltIn:       true,
		ValueType:       ScalarType(BoolBase),
	})
	if err != nil {
		t.Fatalf("AddUserEntry failed: %v", err)
	}

	entry := state.User().Entries[index]
	if entry.IsAutogenerated || entry.IsBuiltIn {
		t.Fatal("Manual entries must not carry autogenerated or built-in flags")
	}
}

func TestAddUserEntryRejectsDuplicates(t *testing.T) {
	state := NewMetadataState(builtInFixture(), &Metadata{}, logger.New())

	entry := MetadataEntry{
		Name:      "CustomSetting",
		Location:  CommandLineOptionLocation,
		ValueType: ScalarType(BoolBase),
	}
	if _, err := state.AddUserEntry(entry); err != nil {
		t.Fatalf("First AddUserEntry failed: %v", err)
	}
	if _, err := state.AddUserEntry(entry); err == nil {
		t.Fatal("Expected a duplicate error")
	}
}

func TestRemoveUserOverrideRestoresBuiltIn(t *testing.T) {
	state := NewMetadataState(builtInFixture(), &Metadata{}, logger.New())

	override := Scalar(NewInteger(7778))
	index, err := state.AddUserEntry(MetadataEntry{
		Name:         "Port",
		Location:     MapURLOptionLocation,
		ValueType:    ScalarType(IntegerBase),
		DefaultValue: &override,
	})
	if err != nil {
		t.Fatalf("AddUserEntry failed: %v", err)
	}

	if err := state.RemoveUserOverride(index); err != nil {
		t.Fatalf("RemoveUserOverride failed: %v", err)
	}

	_, meta := state.Effective().FindEntry("Port", MapURLOptionLocation)
	if meta == nil {
		t.Fatal("Port disappeared from the effective schema")
	}
	if v, _ := meta.DefaultValue.TryInt(); v != 7777 {
		t.Fatalf("Expected built-in default 7777 after removal, got %d", v)
	}
}

func TestUserEnumReplacesBuiltIn(t *testing.T) {
	user := &Metadata{
		Enums: []Enumeration{
			{Name: "ServerPlatform", Values: []EnumerationEntry{
				{DisplayName: "PC Only", Value: "PC"},
			}},
			{Name: "CustomEnum", Values: []EnumerationEntry{
				{DisplayName: "One", Value: "1"},
			}},
		},
	}
	state := NewMetadataState(builtInFixture(), user, logger.New())

	effective := state.Effective()
	if len(effective.Enums) != 2 {
		t.Fatalf("Expected 2 effective enums, got %d", len(effective.Enums))
	}
	if len(effective.Enums[0].Values) != 1 {
		t.Fatalf("User enum should replace the built-in one, got %d values", len(effective.Enums[0].Values))
	}
	if effective.Enums[1].Name != "CustomEnum" {
		t.Fatalf("Unmatched user enum should append, got %s", effective.Enums[1].Name)
	}
}

func TestImportMetadataOverwritesAutogenerated(t *testing.T) {
	old := Scalar(NewInteger(1))
	user := &Metadata{Entries: []MetadataEntry{{
		Name:            "Imported",
		Location:        CommandLineOptionLocation,
		IsAutogenerated: true,
		ValueType:       ScalarType(IntegerBase),
		DefaultValue:    &old,
	}}}
	state := NewMetadataState(builtInFixture(), user, logger.New())

	fresh := Scalar(NewInteger(2))
	err := state.ImportMetadata(&Metadata{Entries: []MetadataEntry{{
		Name:            "Imported",
		Location:        CommandLineOptionLocation,
		IsAutogenerated: true,
		ValueType:       ScalarType(IntegerBase),
		DefaultValue:    &fresh,
	}}})
	if err != nil {
		t.Fatalf("ImportMetadata failed: %v", err)
	}

	if v, _ := state.User().Entries[0].DefaultValue.TryInt(); v != 2 {
		t.Fatalf("Autogenerated entry should be overwritten, got default %d", v)
	}
}

func TestImportMetadataSkipsHandEditedEntries(t *testing.T) {
	kept := Scalar(NewInteger(1))
	user := &Metadata{Entries: []MetadataEntry{{
		Name:         "Edited",
		Location:     CommandLineOptionLocation,
		ValueType:    ScalarType(IntegerBase),
		DefaultValue: &kept,
	}}}
	state := NewMetadataState(builtInFixture(), user, logger.New())

	fresh := Scalar(NewInteger(2))
	err := state.ImportMetadata(&Metadata{Entries: []MetadataEntry{{
		Name:            "Edited",
		Location:        CommandLineOptionLocation,
		IsAutogenerated: true,
		ValueType:       ScalarType(IntegerBase),
		DefaultValue:    &fresh,
	}}})
	if err != nil {
		t.Fatalf("ImportMetadata failed: %v", err)
	}

	if v, _ := state.User().Entries[0].DefaultValue.TryInt(); v != 1 {
		t.Fatalf("Hand-edited entry should survive an import, got default %d", v)
	}
}

func TestImportMetadataCoercesToBuiltInType(t *testing.T) {
	state := NewMetadataState(builtInFixture(), &Metadata{}, logger.New())

	// The importer inferred Port as a string; the built-in schema knows better
	inferred := Scalar(NewString("7778"))
	err := state.ImportMetadata(&Metadata{Entries: []MetadataEntry{{
		Name:            "Port",
		Location:        MapURLOptionLocation,
		IsAutogenerated: true,
		ValueType:       ScalarType(StringBase),
		DefaultValue:    &inferred,
	}}})
	if err != nil {
		t.Fatalf("ImportMetadata failed: %v", err)
	}

	_, meta := state.User().FindEntry("Port", MapURLOptionLocation)
	if meta == nil {
		t.Fatal("Imported entry missing from the user schema")
	}
	if !meta.ValueType.Equal(ScalarType(IntegerBase)) {
		t.Fatalf("Expected the built-in Scalar<Integer> type, got %s", meta.ValueType)
	}
	if v, ok := meta.DefaultValue.TryInt(); !ok || v != 7778 {
		t.Fatalf("Expected re-parsed integer default 7778, got %v", meta.DefaultValue)
	}
}

func TestImportMetadataFailsWhenCoercionFails(t *testing.T) {
	state := NewMetadataState(builtInFixture(), &Metadata{}, logger.New())

	inferred := Scalar(NewString("not-a-number"))
	err := state.ImportMetadata(&Metadata{Entries: []MetadataEntry{{
		Name:            "Port",
		Location:        MapURLOptionLocation,
		IsAutogenerated: true,
		ValueType:       ScalarType(StringBase),
		DefaultValue:    &inferred,
	}}})
	if err == nil {
		t.Fatal("Expected the import to fail when the default cannot be re-parsed")
	}
}

func TestBuiltInSchemaLoadsAndValidates(t *testing.T) {
	metadata, err := LoadBuiltInMetadata()
	if err != nil {
		t.Fatalf("LoadBuiltInMetadata failed: %v", err)
	}
	if len(metadata.Entries) == 0 {
		t.Fatal("Built-in schema has no entries")
	}
	for _, entry := range metadata.Entries {
		if !entry.IsBuiltIn {
			t.Fatalf("Entry %s is not flagged built-in", entry.Name)
		}
		if entry.IsAutogenerated {
			t.Fatalf("Entry %s must not be flagged autogenerated", entry.Name)
		}
	}
	if _, meta := metadata.FindEntry("Port", MapURLOptionLocation); meta == nil {
		t.Fatal("Built-in schema is missing the Port entry")
	}
	if _, enum := metadata.FindEnum("ServerPlatform"); enum == nil {
		t.Fatal("Built-in schema is missing the ServerPlatform enum")
	}
}
