package gameconfig

// Entry is one concrete override a server instance applies on top of the
// schema default. Absence of an entry for a (name, location) means "use the
// default".
type Entry struct {
	MetaName     string   `json:"meta_name"`
	MetaLocation Location `json:"meta_location"`
	IsFavorite   bool     `json:"is_favorite,omitempty"`
	Value        Variant  `json:"value"`
}

// EntryFromMetadata seeds an override from a schema entry, starting at the
// declared default (or the type's zero value when none is declared).
func EntryFromMetadata(meta *MetadataEntry) Entry {
	value := DefaultVariant(meta.ValueType)
	if meta.DefaultValue != nil {
		value = *meta.DefaultValue
	}
	return Entry{
		MetaName:     meta.Name,
		MetaLocation: meta.Location,
		Value:        value,
	}
}

// Entries is the set of concrete overrides for one server instance.
type Entries struct {
	Entries []Entry `json:"entries"`
}

// Find locates an override by its (name, location) identity key. Returns
// (-1, nil) when absent.
func (e *Entries) Find(name string, location Location) (int, *Entry) {
	for i := range e.Entries {
		if e.Entries[i].MetaName == name && e.Entries[i].MetaLocation == location {
			return i, &e.Entries[i]
		}
	}
	return -1, nil
}

// Upsert replaces the override with the same identity key or appends a new
// one.
func (e *Entries) Upsert(entry Entry) {
	if i, _ := e.Find(entry.MetaName, entry.MetaLocation); i >= 0 {
		e.Entries[i] = entry
		return
	}
	e.Entries = append(e.Entries, entry)
}

// Remove deletes the override with the given identity key, reporting whether
// one existed.
func (e *Entries) Remove(name string, location Location) bool {
	i, _ := e.Find(name, location)
	if i < 0 {
		return false
	}
	e.Entries = append(e.Entries[:i], e.Entries[i+1:]...)
	return true
}

// TryBool returns the payload of a scalar bool override.
func (e *Entries) TryBool(name string, location Location) (bool, bool) {
	if _, entry := e.Find(name, location); entry != nil {
		return entry.Value.TryBool()
	}
	return false, false
}

// TryString returns the payload of a scalar string override.
func (e *Entries) TryString(name string, location Location) (string, bool) {
	if _, entry := e.Find(name, location); entry != nil {
		return entry.Value.TryString()
	}
	return "", false
}

// TryInt returns the payload of a scalar integer override.
func (e *Entries) TryInt(name string, location Location) (int64, bool) {
	if _, entry := e.Find(name, location); entry != nil {
		return entry.Value.TryInt()
	}
	return 0, false
}
