// Package mapfile reads and writes the Source Map v3 JSON envelope around
// the core engine: it extracts the sources, sourcesContent, names and
// mappings fields for ingestion and reassembles them on the way out. The
// engine itself never touches JSON.
package mapfile

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mapforge/sourcemap/pkg/sourcemap"
)

// Version is the only source map revision this package understands.
const Version = 3

// File is a Source Map v3 JSON document. SourcesContent is positional and
// sparse: a nil entry means the content for that source is unavailable.
type File struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// Parse decodes a source map JSON document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse source map: %w", err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("unsupported source map version %d (want %d)", f.Version, Version)
	}
	return &f, nil
}

// ToSourceMap feeds the document through the engine: the mappings string
// is decoded with the document's own tables, and any sourcesContent
// entries are installed on the resulting map.
func (f *File) ToSourceMap(projectRoot string) (*sourcemap.SourceMap, error) {
	sm := sourcemap.New(projectRoot)
	if err := sm.AddVLQMappings([]byte(f.Mappings), f.Sources, f.Names); err != nil {
		return nil, err
	}

	// Content entries are positional in the document but keyed by table
	// index in the engine, so translate through the merged indexes.
	indexes := sm.AddSources(f.Sources)
	for i, content := range f.SourcesContent {
		if content == nil || i >= len(indexes) {
			continue
		}
		if err := sm.SetSourceContent(indexes[i], *content); err != nil {
			return nil, err
		}
	}
	return sm, nil
}

// FromSourceMap serializes an engine map into a JSON document. The file
// argument names the generated artifact the map describes.
func FromSourceMap(sm *sourcemap.SourceMap, file string) (*File, error) {
	var mappings strings.Builder
	if err := sm.WriteVLQ(&mappings); err != nil {
		return nil, err
	}

	sources := append([]string(nil), sm.Sources()...)
	contentTable := sm.SourcesContent()
	var sourcesContent []*string
	if len(contentTable) > 0 {
		sourcesContent = make([]*string, len(sources))
		for i := range sources {
			if content, ok := contentTable[uint32(i)]; ok {
				c := content
				sourcesContent[i] = &c
			}
		}
	}

	return &File{
		Version:        Version,
		File:           file,
		SourceRoot:     sm.ProjectRoot(),
		Sources:        sources,
		SourcesContent: sourcesContent,
		Names:          append([]string(nil), sm.Names()...),
		Mappings:       mappings.String(),
	}, nil
}

// Encode renders the document as indented JSON.
func (f *File) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal source map: %w", err)
	}
	return data, nil
}

// InlineURL renders the document as a base64 data-URL comment, ready to be
// appended to the generated artifact.
func (f *File) InlineURL() (string, error) {
	data, err := f.Encode()
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("//# sourceMappingURL=data:application/json;base64,%s", encoded), nil
}
