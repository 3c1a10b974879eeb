package ini

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func TestParsePreservesOrderAndDuplicates(t *testing.T) {
	text := `
; a comment
[ServerSettings]
ServerPVE=True
ActiveMods=1
ActiveMods=2

[/Script/Engine.GameSession]
MaxPlayers=70
`
	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(doc.Sections))
	}

	settings := doc.FindSection("ServerSettings")
	if settings == nil {
		t.Fatal("ServerSettings section missing")
	}
	if len(settings.Properties) != 3 {
		t.Fatalf("Expected 3 properties, got %d", len(settings.Properties))
	}
	// Duplicate keys survive in order
	if settings.Properties[1].Value != "1" || settings.Properties[2].Value != "2" {
		t.Fatalf("Duplicate keys lost: %+v", settings.Properties)
	}

	if v, ok := doc.FindSection("/Script/Engine.GameSession").Get("MaxPlayers"); !ok || v != "70" {
		t.Fatalf("Got %q, %v", v, ok)
	}
}

func TestParseKeepsPreSectionAndBareKeys(t *testing.T) {
	doc, err := Parse("Orphan=1\nBareKey\n[S]\nA=1\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	pre := doc.FindSection("")
	if pre == nil {
		t.Fatal("Pre-section properties missing")
	}
	if v, ok := pre.Get("Orphan"); !ok || v != "1" {
		t.Fatalf("Got %q, %v", v, ok)
	}
	if v, ok := pre.Get("BareKey"); !ok || v != "" {
		t.Fatalf("Bare key should keep an empty value, got %q, %v", v, ok)
	}
}

func TestParseLeavesValuesVerbatim(t *testing.T) {
	doc, err := Parse("[S]\nMessage=\"hello = world\"\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// Only the first '=' splits; quotes are not interpreted
	if v, _ := doc.FindSection("S").Get("Message"); v != `"hello = world"` {
		t.Fatalf("Value was transformed: %q", v)
	}
}

func TestSetReplacesFirstOccurrenceOnly(t *testing.T) {
	section := &Section{Name: "S"}
	section.Append("Mod", "1")
	section.Append("Mod", "2")
	section.Set("Mod", "9")

	if len(section.Properties) != 2 {
		t.Fatalf("Set should not append, got %d properties", len(section.Properties))
	}
	if section.Properties[0].Value != "9" || section.Properties[1].Value != "2" {
		t.Fatalf("Unexpected properties: %+v", section.Properties)
	}
}

func TestDeleteFunc(t *testing.T) {
	section := &Section{Name: "S"}
	section.Append("Stats[0]", "1")
	section.Append("Stats[1]", "2")
	section.Append("Other", "3")

	removed := section.DeleteFunc(func(key string) bool {
		return key == "Stats[0]" || key == "Stats[1]"
	})
	if !removed {
		t.Fatal("DeleteFunc should report removals")
	}
	if len(section.Properties) != 1 || section.Properties[0].Key != "Other" {
		t.Fatalf("Unexpected properties: %+v", section.Properties)
	}
	if section.DeleteFunc(func(string) bool { return false }) {
		t.Fatal("DeleteFunc should report when nothing matched")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Game.ini")

	doc := New()
	section := doc.Section("ServerSettings")
	section.Append("ActiveMods", "1")
	section.Append("ActiveMods", "2")
	doc.Section("MessageOfTheDay").Set("Message", `"with = signs"`)

	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	settings := loaded.FindSection("ServerSettings")
	if settings == nil || len(settings.Properties) != 2 {
		t.Fatalf("Duplicate keys lost on round trip: %+v", loaded.Sections)
	}
	if v, _ := loaded.FindSection("MessageOfTheDay").Get("Message"); v != `"with = signs"` {
		t.Fatalf("Value changed on round trip: %q", v)
	}
}

func TestLoadDecodesUTF16(t *testing.T) {
	text := "[ServerSettings]\nSessionName=Übertest\n"

	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := encoder.Bytes([]byte(text))
	if err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}

	path := filepath.Join(t.TempDir(), "GameUserSettings.ini")
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, ok := doc.FindSection("ServerSettings").Get("SessionName"); !ok || v != "Übertest" {
		t.Fatalf("UTF-16 content decoded wrong: %q, %v", v, ok)
	}
}

func TestLoadOrNewMissingFile(t *testing.T) {
	doc, err := LoadOrNew(filepath.Join(t.TempDir(), "absent.ini"))
	if err != nil {
		t.Fatalf("LoadOrNew should tolerate a missing file: %v", err)
	}
	if len(doc.Sections) != 0 {
		t.Fatal("Expected an empty document")
	}
}
