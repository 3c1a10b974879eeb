package server

import (
	"fmt"
	"strings"

	"ark_manager/internal/gameconfig"
	"ark_manager/model"
)

// additionalOptionsName is the passthrough entry whose raw elements are
// appended to the URL ('?'-prefixed) or the switch list ('-'-prefixed).
const additionalOptionsName = "additionalOptions"

// GenerateCommandLine builds the argument vector for launching a server.
// Every override must resolve against the effective schema; an unresolved
// entry fails the whole generation since launching with an incomplete
// configuration is unsafe. The map name is mandatory, taken from an override
// or the schema default.
func GenerateCommandLine(state *gameconfig.MetadataState, settings *model.ServerSettings) ([]string, error) {
	metadata := state.Effective()

	var resolvedEntries []resolvedEntry
	var additionalOptions *gameconfig.Entry

	for i := range settings.ConfigEntries.Entries {
		entry := &settings.ConfigEntries.Entries[i]
		if entry.MetaName == additionalOptionsName {
			additionalOptions = entry
			continue
		}
		_, meta := metadata.FindEntry(entry.MetaName, entry.MetaLocation)
		if meta == nil {
			return nil, &gameconfig.ResolutionError{Name: entry.MetaName, Location: entry.MetaLocation}
		}
		resolvedEntries = append(resolvedEntries, resolvedEntry{entry, meta})
	}

	mapName, err := findMapName(metadata, resolvedEntries)
	if err != nil {
		return nil, err
	}

	var urlParams []string
	for _, r := range resolvedEntries {
		if r.entry.MetaLocation == gameconfig.MapURLOptionLocation {
			urlParams = append(urlParams, fmt.Sprintf("%s=%s", r.entry.MetaName, r.entry.Value))
		}
	}
	urlParamText := strings.Join(urlParams, "?")
	if additionalOptions != nil && additionalOptions.Value.Quantity == gameconfig.QuantityVector {
		for _, value := range additionalOptions.Value.Values {
			if value.Kind == gameconfig.KindString && strings.HasPrefix(value.Str, "?") {
				urlParamText += value.Str
			}
		}
	}

	var switches []string
	for _, r := range resolvedEntries {
		if r.entry.MetaLocation != gameconfig.CommandLineOptionLocation {
			continue
		}
		if r.meta.ValueType.Equal(gameconfig.ScalarType(gameconfig.BoolBase)) {
			enabled, ok := r.entry.Value.TryBool()
			if !ok {
				return nil, fmt.Errorf("config entry %s actual type doesn't match metadata type", r.entry.MetaName)
			}
			// A false boolean switch emits nothing
			if enabled {
				switches = append(switches, "-"+r.entry.MetaName)
			}
			continue
		}
		switches = append(switches, fmt.Sprintf("-%s=%s", r.entry.MetaName, r.entry.Value))
	}
	if additionalOptions != nil && additionalOptions.Value.Quantity == gameconfig.QuantityVector {
		for _, value := range additionalOptions.Value.Values {
			if value.Kind == gameconfig.KindString && strings.HasPrefix(value.Str, "-") {
				switches = append(switches, value.Str)
			}
		}
	}

	args := make([]string, 0, len(switches)+1)
	if urlParamText == "" {
		args = append(args, mapName)
	} else {
		args = append(args, fmt.Sprintf("%s?%s", mapName, urlParamText))
	}
	args = append(args, switches...)
	return args, nil
}

type resolvedEntry struct {
	entry *gameconfig.Entry
	meta  *gameconfig.MetadataEntry
}

func findMapName(metadata *gameconfig.Metadata, entries []resolvedEntry) (string, error) {
	for _, r := range entries {
		if r.entry.MetaLocation == gameconfig.MapNameLocation {
			return r.entry.Value.String(), nil
		}
	}
	for i := range metadata.Entries {
		meta := &metadata.Entries[i]
		if meta.Location == gameconfig.MapNameLocation && meta.DefaultValue != nil {
			return meta.DefaultValue.String(), nil
		}
	}
	return "", fmt.Errorf("failed to find required map name setting")
}
