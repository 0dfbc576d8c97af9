package catalogue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/soundbite/core"
	"gopkg.in/yaml.v3"
)

// DefaultEntries returns the placeholder catalogue written on first run.
func DefaultEntries() []Entry {
	return []Entry{
		{ID: "example.ogg", Phrases: []string{"example question", "test query"}},
	}
}

// ParseJSON decodes a JSON object of clip id to phrase list. Key order is
// preserved and every phrase must be a string. Any shape problem wraps
// core.ErrCatalogueLoad.
func ParseJSON(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%w: expected an object of clip id to phrases: %w", core.ErrCatalogueLoad, err)
	}

	var entries []Entry
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrCatalogueLoad, err)
		}
		id, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", core.ErrCatalogueLoad, tok)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %w: %q", core.ErrCatalogueLoad, ErrDuplicateClip, id)
		}
		seen[id] = struct{}{}

		phrases, err := decodeJSONPhrases(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: clip %q: %w", core.ErrCatalogueLoad, id, err)
		}
		entries = append(entries, Entry{ID: id, Phrases: phrases})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogueLoad, err)
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = fmt.Errorf("trailing data %v", tok)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogueLoad, err)
	}
	return entries, nil
}

func decodeJSONPhrases(dec *json.Decoder) ([]string, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, fmt.Errorf("expected a list of phrases: %w", err)
	}
	var phrases []string
	for i := 0; dec.More(); i++ {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		phrase, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("phrase %d is not a string", i)
		}
		phrases = append(phrases, phrase)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return phrases, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if got, ok := tok.(json.Delim); !ok || got != want {
		return fmt.Errorf("found %v, want %v", tok, want)
	}
	return nil
}

// ParseYAML decodes a YAML mapping of clip id to phrase list. Key order is
// preserved and every phrase must be a string scalar. Any shape problem wraps
// core.ErrCatalogueLoad.
func ParseYAML(data []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogueLoad, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: document is empty", core.ErrCatalogueLoad)
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping of clip id to phrases at line %d",
			core.ErrCatalogueLoad, mapping.Line)
	}

	entries := make([]Entry, 0, len(mapping.Content)/2)
	seen := make(map[string]struct{}, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: clip id at line %d is not a string", core.ErrCatalogueLoad, keyNode.Line)
		}
		id := keyNode.Value
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %w: %q", core.ErrCatalogueLoad, ErrDuplicateClip, id)
		}
		seen[id] = struct{}{}

		if valueNode.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: clip %q: expected a list of phrases at line %d",
				core.ErrCatalogueLoad, id, valueNode.Line)
		}
		phrases := make([]string, 0, len(valueNode.Content))
		for _, item := range valueNode.Content {
			if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
				return nil, fmt.Errorf("%w: clip %q: phrase at line %d is not a string",
					core.ErrCatalogueLoad, id, item.Line)
			}
			phrases = append(phrases, item.Value)
		}
		entries = append(entries, Entry{ID: id, Phrases: phrases})
	}
	return entries, nil
}

// ReadFile reads and parses the catalogue at path, as YAML for .yaml and .yml
// files and as JSON otherwise. A missing file returns an error wrapping
// ErrSourceNotFound.
func ReadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogueLoad, err)
	}
	if isYAML(path) {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// WriteFile writes entries to path, as YAML for .yaml and .yml files and as
// indented JSON otherwise.
func WriteFile(path string, entries []Entry) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = encodeYAML(entries)
	} else {
		data, err = encodeJSON(entries)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFile reads the catalogue at path. When the file does not exist the
// default catalogue is written there and returned, with seeded set to true.
func LoadFile(path string) (entries []Entry, seeded bool, err error) {
	entries, err = ReadFile(path)
	if err == nil {
		return entries, false, nil
	}
	if !errors.Is(err, ErrSourceNotFound) {
		return nil, false, err
	}

	slog.Warn("catalogue file not found, creating default", "path", path)
	entries = DefaultEntries()
	if err := WriteFile(path, entries); err != nil {
		return nil, false, fmt.Errorf("%w: writing default catalogue: %w", core.ErrCatalogueLoad, err)
	}
	return entries, true, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func encodeYAML(entries []Entry) ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range entries {
		var value yaml.Node
		if err := value.Encode(entry.Phrases); err != nil {
			return nil, err
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.ID},
			&value,
		)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeJSON writes an object whose keys follow entry order.
func encodeJSON(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, entry := range entries {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(entry.ID)
		if err != nil {
			return nil, err
		}
		phrases := entry.Phrases
		if phrases == nil {
			phrases = []string{}
		}
		value, err := json.MarshalIndent(phrases, "  ", "  ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
	}
	if len(entries) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
