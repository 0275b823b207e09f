// Package frontmatter splits and assembles `---` delimited YAML front
// matter on Markdown documents.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// ErrUnclosedFrontMatter indicates a document opened a front matter block
// without a closing delimiter.
var ErrUnclosedFrontMatter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// Split separates YAML front matter from the Markdown body.
//
// If the document does not start with a delimiter line, had is false and
// body is the full input. CRLF line endings are tolerated.
func Split(content []byte) (meta []byte, body []byte, had bool, err error) {
	rest, ok := cutDelimiterLine(content)
	if !ok {
		return nil, content, false, nil
	}

	// Scan line by line for the closing delimiter.
	offset := 0
	for offset <= len(rest) {
		line, next := nextLine(rest[offset:])
		if line == nil {
			return nil, nil, false, ErrUnclosedFrontMatter
		}
		if bytes.Equal(bytes.TrimRight(line, "\r"), delimiter) {
			return rest[:offset], rest[offset+next:], true, nil
		}
		offset += next
	}
	return nil, nil, false, ErrUnclosedFrontMatter
}

// Parse decodes raw front matter YAML (without delimiters) into out.
// Empty input is valid and leaves out untouched.
func Parse(meta []byte, out any) error {
	if len(bytes.TrimSpace(meta)) == 0 {
		return nil
	}
	return yaml.Unmarshal(meta, out)
}

// ParseMap decodes raw front matter YAML into a generic map.
func ParseMap(meta []byte) (map[string]any, error) {
	fields := map[string]any{}
	if err := Parse(meta, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Serialize assembles a complete document from metadata and a Markdown body.
// Used when scaffolding new content files.
func Serialize(meta any, body []byte) ([]byte, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(delimiter)
	buf.WriteByte('\n')
	buf.Write(raw)
	buf.Write(delimiter)
	buf.WriteByte('\n')
	if len(body) > 0 {
		buf.WriteByte('\n')
		buf.Write(body)
	}
	return buf.Bytes(), nil
}

// cutDelimiterLine strips a leading delimiter line, reporting whether one
// was present.
func cutDelimiterLine(content []byte) ([]byte, bool) {
	line, next := nextLine(content)
	if line == nil {
		return nil, false
	}
	if !bytes.Equal(bytes.TrimRight(line, "\r"), delimiter) {
		return nil, false
	}
	return content[next:], true
}

// nextLine returns the first line (without newline) and the offset just
// past it. A nil line means no newline remained.
func nextLine(b []byte) ([]byte, int) {
	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return nil, 0
	}
	return b[:idx], idx + 1
}
