// Package ini implements the ordered INI document model the game's
// configuration files need: duplicate keys are legal, key order is preserved,
// and values are written back verbatim with no escaping transformation of
// their own. Escaping is the caller's responsibility, since the game binaries
// parse values with fixed expectations.
package ini

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Property is one key/value line of a section.
type Property struct {
	Key   string
	Value string
}

// Section is a named, ordered sequence of properties. The same key may
// appear multiple times.
type Section struct {
	Name       string
	Properties []Property
}

// Get returns the value of the first occurrence of key.
func (s *Section) Get(key string) (string, bool) {
	for _, p := range s.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Set replaces the first occurrence of key or appends a new property.
func (s *Section) Set(key, value string) {
	for i := range s.Properties {
		if s.Properties[i].Key == key {
			s.Properties[i].Value = value
			return
		}
	}
	s.Properties = append(s.Properties, Property{Key: key, Value: value})
}

// Append adds a property without touching existing occurrences of the key.
func (s *Section) Append(key, value string) {
	s.Properties = append(s.Properties, Property{Key: key, Value: value})
}

// Delete removes every occurrence of key, reporting whether any existed.
func (s *Section) Delete(key string) bool {
	return s.DeleteFunc(func(k string) bool { return k == key })
}

// DeleteFunc removes every property whose key matches, reporting whether any
// were removed.
func (s *Section) DeleteFunc(match func(key string) bool) bool {
	kept := s.Properties[:0]
	removed := false
	for _, p := range s.Properties {
		if match(p.Key) {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	s.Properties = kept
	return removed
}

// Document is a whole INI file held in memory. Writes are whole-file
// rewrites: load, mutate, save.
type Document struct {
	Sections []*Section
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Section returns the named section, creating it if needed. The empty name
// addresses properties that appear before any section header.
func (d *Document) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	s := &Section{Name: name}
	d.Sections = append(d.Sections, s)
	return s
}

// FindSection returns the named section or nil.
func (d *Document) FindSection(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Load reads and parses the file at path. Unreal writes some configuration
// files as UTF-16 with a BOM, so the bytes are decoded before parsing.
// Comment lines (';' or '#') and blank lines are not preserved.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return Parse(text)
}

// LoadOrNew reads the file at path, returning an empty document when the
// file does not exist yet.
func LoadOrNew(path string) (*Document, error) {
	doc, err := Load(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	return doc, err
}

// Parse parses INI text into a document.
func Parse(text string) (*Document, error) {
	doc := New()
	var current *Section

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = doc.Section(line[1 : len(line)-1])
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			// Unreal tolerates bare keys; keep them with an empty value
			key = line
		}
		if current == nil {
			current = doc.Section("")
		}
		current.Append(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes the document to path as UTF-8, values verbatim.
func (d *Document) Save(path string) error {
	var sb strings.Builder
	for _, section := range d.Sections {
		if section.Name != "" {
			fmt.Fprintf(&sb, "[%s]\n", section.Name)
		}
		for _, p := range section.Properties {
			fmt.Fprintf(&sb, "%s=%s\n", p.Key, p.Value)
		}
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

var (
	utf16leBOM = []byte{0xff, 0xfe}
	utf16beBOM = []byte{0xfe, 0xff}
	utf8BOM    = []byte{0xef, 0xbb, 0xbf}
)

// decode converts raw file bytes to a UTF-8 string, honoring a leading BOM.
func decode(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return string(data[len(utf8BOM):]), nil
	case bytes.HasPrefix(data, utf16leBOM):
		return transformUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, utf16beBOM):
		return transformUTF16(data, unicode.BigEndian)
	default:
		return string(data), nil
	}
}

func transformUTF16(data []byte, endianness unicode.Endianness) (string, error) {
	decoder := unicode.UTF16(endianness, unicode.ExpectBOM).NewDecoder()
	decoded, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
