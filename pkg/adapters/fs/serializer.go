package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/shelf/pkg/core"
	"github.com/magiconair/properties"
	"github.com/tidwall/jsonc"
)

const (
	// PropertiesFilename marks a library stored in the current layout.
	PropertiesFilename = "library.properties"
	// LegacyFilename marks a library stored in the legacy layout.
	LegacyFilename = "spark.json"
)

// Serializer defines how to read and write one descriptor generation.
type Serializer interface {
	// Layout is the generation handled by the serializer.
	Layout() core.Layout
	// Filename is the descriptor file, relative to the library directory.
	Filename() string
	// Parse reads a descriptor from r.
	Parse(r io.Reader) (core.Descriptor, error)
	// Serialize converts the descriptor to bytes.
	Serialize(d core.Descriptor) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers, keyed by layout.
func DefaultSerializers() map[core.Layout]Serializer {
	return map[core.Layout]Serializer{
		core.LayoutLegacy:  NewLegacySerializer(),
		core.LayoutCurrent: NewPropertiesSerializer(),
	}
}

// PrepareDescriptor fills in the sentence from the description when it is missing.
// An explicit sentence is never overwritten.
func PrepareDescriptor(d core.Descriptor) core.Descriptor {
	if d.Sentence == "" && d.Description != "" {
		d.Sentence = d.Description
	}
	return d
}

// knownFields maps descriptor keys to the fields they populate.
func knownFields(d *core.Descriptor) map[string]*string {
	return map[string]*string{
		"name":        &d.Name,
		"version":     &d.Version,
		"license":     &d.License,
		"author":      &d.Author,
		"sentence":    &d.Sentence,
		"description": &d.Description,
	}
}

// --- Legacy (JSON) Serializer ---

// LegacySerializer handles the JSON descriptor of the legacy layout.
type LegacySerializer struct{}

// NewLegacySerializer creates a new legacy serializer.
func NewLegacySerializer() *LegacySerializer {
	return &LegacySerializer{}
}

func (s *LegacySerializer) Layout() core.Layout { return core.LayoutLegacy }

func (s *LegacySerializer) Filename() string { return LegacyFilename }

func (s *LegacySerializer) Parse(r io.Reader) (core.Descriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Descriptor{}, err
	}

	// Older descriptors were hand edited and sometimes carry comments or trailing commas.
	var payload map[string]interface{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &payload); err != nil {
		return core.Descriptor{}, fmt.Errorf("invalid json: %w", err)
	}
	if payload == nil {
		return core.Descriptor{}, errors.New("invalid json: descriptor is not an object")
	}

	var d core.Descriptor
	fields := knownFields(&d)
	for k, v := range payload {
		field, ok := fields[k]
		if !ok {
			if d.Extra == nil {
				d.Extra = make(map[string]any)
			}
			d.Extra[k] = v
			continue
		}
		str, ok := v.(string)
		if !ok {
			return core.Descriptor{}, fmt.Errorf("field %q must be a string, got %T", k, v)
		}
		*field = str
	}
	return d, nil
}

func (s *LegacySerializer) Serialize(d core.Descriptor) ([]byte, error) {
	payload := make(map[string]interface{}, len(d.Extra)+6)
	for k, v := range d.Extra {
		payload[k] = v
	}
	for k, v := range knownFields(&d) {
		if *v != "" {
			payload[k] = *v
		} else {
			delete(payload, k)
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// --- Properties Serializer ---

// propertiesOrder is the fixed write order of the current descriptor.
var propertiesOrder = []string{"name", "version", "license", "author", "sentence"}

// PropertiesSerializer handles the key=value descriptor of the current layout.
type PropertiesSerializer struct{}

// NewPropertiesSerializer creates a new properties serializer.
func NewPropertiesSerializer() *PropertiesSerializer {
	return &PropertiesSerializer{}
}

func (s *PropertiesSerializer) Layout() core.Layout { return core.LayoutCurrent }

func (s *PropertiesSerializer) Filename() string { return PropertiesFilename }

func (s *PropertiesSerializer) Parse(r io.Reader) (core.Descriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Descriptor{}, err
	}

	// ${...} in a sentence is text, not a reference.
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return core.Descriptor{}, fmt.Errorf("invalid properties: %w", err)
	}

	var d core.Descriptor
	fields := knownFields(&d)
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		if field, ok := fields[k]; ok {
			*field = v
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]any)
		}
		d.Extra[k] = v
	}
	return d, nil
}

// Serialize writes name, version, license, author and sentence in that order,
// omitting empty fields, followed by the extra keys sorted by name.
// Identical descriptors always produce identical bytes.
func (s *PropertiesSerializer) Serialize(d core.Descriptor) ([]byte, error) {
	d = PrepareDescriptor(d)
	fields := knownFields(&d)

	var buf bytes.Buffer
	for _, k := range propertiesOrder {
		writeProperty(&buf, k, *fields[k])
	}

	extraKeys := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		if _, known := fields[k]; known {
			continue
		}
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		if v := d.Extra[k]; v != nil {
			writeProperty(&buf, k, fmt.Sprint(v))
		}
	}
	return buf.Bytes(), nil
}

var (
	keyEscaper   = strings.NewReplacer(`\`, `\\`, `=`, `\=`, `:`, `\:`, ` `, `\ `, "\t", `\t`, "\f", `\f`, "\n", `\n`, "\r", `\r`)
	valueEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\f", `\f`, "\n", `\n`, "\r", `\r`)
)

// writeProperty writes one key=value line that the loader reads back unchanged.
// A leading space of the value and a leading comment marker of the key are escaped,
// since the reader would otherwise strip the one and skip the line for the other.
func writeProperty(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	if strings.HasPrefix(key, "#") || strings.HasPrefix(key, "!") {
		buf.WriteByte('\\')
	}
	buf.WriteString(keyEscaper.Replace(key))
	buf.WriteByte('=')
	if strings.HasPrefix(value, " ") {
		buf.WriteByte('\\')
	}
	buf.WriteString(valueEscaper.Replace(value))
	buf.WriteByte('\n')
}
