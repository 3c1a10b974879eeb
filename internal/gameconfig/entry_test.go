package gameconfig

import "testing"

func TestEntriesUpsertAndFind(t *testing.T) {
	var entries Entries
	location := IniLocation(IniFileGameUserSettings, SectionServerSettings)

	entries.Upsert(Entry{MetaName: "ServerPVE", MetaLocation: location, Value: Scalar(NewBool(true))})
	entries.Upsert(Entry{MetaName: "ServerPVE", MetaLocation: CommandLineOptionLocation, Value: Scalar(NewBool(false))})

	if len(entries.Entries) != 2 {
		t.Fatalf("Same name at different locations must coexist, got %d", len(entries.Entries))
	}

	// Upsert on the same identity replaces in place
	entries.Upsert(Entry{MetaName: "ServerPVE", MetaLocation: location, Value: Scalar(NewBool(false))})
	if len(entries.Entries) != 2 {
		t.Fatalf("Upsert appended instead of replacing, got %d", len(entries.Entries))
	}
	i, entry := entries.Find("ServerPVE", location)
	if i != 0 || entry == nil {
		t.Fatalf("Find returned %d, %v", i, entry)
	}
	if b, _ := entry.Value.TryBool(); b {
		t.Fatal("Value was not replaced")
	}

	if i, entry := entries.Find("Missing", location); i != -1 || entry != nil {
		t.Fatalf("Miss should return -1, nil; got %d, %v", i, entry)
	}
}

func TestEntriesRemove(t *testing.T) {
	var entries Entries
	entries.Upsert(Entry{MetaName: "A", MetaLocation: CommandLineOptionLocation, Value: Scalar(NewBool(true))})

	if !entries.Remove("A", CommandLineOptionLocation) {
		t.Fatal("Remove should report success")
	}
	if entries.Remove("A", CommandLineOptionLocation) {
		t.Fatal("Second remove should report a miss")
	}
	if len(entries.Entries) != 0 {
		t.Fatalf("Entry not removed: %+v", entries.Entries)
	}
}

func TestEntriesTypedAccessors(t *testing.T) {
	location := IniLocation(IniFileGameUserSettings, SectionServerSettings)
	var entries Entries
	entries.Upsert(Entry{MetaName: "RCONEnabled", MetaLocation: location, Value: Scalar(NewBool(true))})
	entries.Upsert(Entry{MetaName: "RCONPort", MetaLocation: location, Value: Scalar(NewInteger(27020))})
	entries.Upsert(Entry{MetaName: "ServerAdminPassword", MetaLocation: location, Value: Scalar(NewString("secret"))})

	if b, ok := entries.TryBool("RCONEnabled", location); !ok || !b {
		t.Fatalf("TryBool = %v, %v", b, ok)
	}
	if v, ok := entries.TryInt("RCONPort", location); !ok || v != 27020 {
		t.Fatalf("TryInt = %d, %v", v, ok)
	}
	if s, ok := entries.TryString("ServerAdminPassword", location); !ok || s != "secret" {
		t.Fatalf("TryString = %q, %v", s, ok)
	}

	// A kind mismatch reports a miss, not a zero value hit
	if _, ok := entries.TryBool("RCONPort", location); ok {
		t.Fatal("TryBool on an integer entry should miss")
	}
	if _, ok := entries.TryInt("Absent", location); ok {
		t.Fatal("TryInt on a missing entry should miss")
	}
}

func TestEntryFromMetadata(t *testing.T) {
	defaultValue := Scalar(NewInteger(7777))
	meta := &MetadataEntry{
		Name:         "Port",
		Location:     MapURLOptionLocation,
		ValueType:    ScalarType(IntegerBase),
		DefaultValue: &defaultValue,
	}

	entry := EntryFromMetadata(meta)
	if entry.MetaName != "Port" || entry.MetaLocation != MapURLOptionLocation {
		t.Fatalf("Identity wrong: %+v", entry)
	}
	if !entry.Value.Equal(defaultValue) {
		t.Fatalf("Value should seed from the default, got %v", entry.Value)
	}

	// Without a default the value seeds from the type's zero
	meta.DefaultValue = nil
	entry = EntryFromMetadata(meta)
	if v, ok := entry.Value.TryInt(); !ok || v != 0 {
		t.Fatalf("Expected zero integer, got %v", entry.Value)
	}
}
