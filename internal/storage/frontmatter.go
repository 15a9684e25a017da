package storage

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	delimiter = "---"

	keyTitle     = "title"
	keySlug      = "slug"
	keyTags      = "tags"
	keyCreatedAt = "createdAt"
	keyUpdatedAt = "updatedAt"

	// timestampLayout is ISO-8601 UTC with millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var managedKeys = []string{keyTitle, keySlug, keyTags, keyCreatedAt, keyUpdatedAt}

var errUnterminated = errors.New("front matter is not terminated")

// splitFrontMatter separates a leading "---" delimited YAML block from the
// body. Documents without a leading delimiter have no front matter.
func splitFrontMatter(data []byte) (meta []byte, body string, err error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	first, rest, more := cutLine(data)
	if !isDelimiter(first) {
		return nil, string(data), nil
	}
	if !more {
		return nil, "", errUnterminated
	}
	start := len(data) - len(rest)
	for pos := start; ; {
		line, next, more := cutLine(data[pos:])
		if isDelimiter(line) {
			return data[start:pos], string(next), nil
		}
		if !more {
			return nil, "", errUnterminated
		}
		pos = len(data) - len(next)
	}
}

func isDelimiter(line []byte) bool {
	return strings.TrimRight(string(line), " \t\r") == delimiter
}

// cutLine returns the first line of b (without its newline) and the rest.
// found is false when b has no newline.
func cutLine(b []byte) (line, rest []byte, found bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}

// parseDocument decodes a persisted note file into its metadata map and body.
func parseDocument(data []byte) (map[string]interface{}, string, error) {
	raw, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, "", err
	}
	meta := make(map[string]interface{})
	if len(bytes.TrimSpace(raw)) == 0 {
		return meta, body, nil
	}
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return nil, "", fmt.Errorf("decode front matter: %w", err)
	}
	if meta == nil {
		meta = make(map[string]interface{})
	}
	return meta, body, nil
}

// encodeDocument renders front matter in a fixed key order followed by the
// body. Managed keys come first, then extra keys sorted by name.
func encodeDocument(title, slug string, tags []string, createdAt, updatedAt *time.Time, extra map[string]interface{}, body string) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value)
	}
	str := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}

	add(keyTitle, str(title))
	add(keySlug, str(slug))
	tagSeq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if len(tags) == 0 {
		tagSeq.Style = yaml.FlowStyle
	}
	for _, t := range tags {
		tagSeq.Content = append(tagSeq.Content, str(t))
	}
	add(keyTags, tagSeq)
	add(keyCreatedAt, timestampNode(createdAt))
	add(keyUpdatedAt, timestampNode(updatedAt))

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !isManaged(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		var v yaml.Node
		if err := v.Encode(extra[k]); err != nil {
			return nil, fmt.Errorf("encode front matter key %q: %w", k, err)
		}
		add(k, &v)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

func timestampNode(t *time.Time) *yaml.Node {
	if t == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: formatTimestamp(*t)}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func isManaged(key string) bool {
	for _, k := range managedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// metaString returns a scalar metadata value as a trimmed string.
func metaString(meta map[string]interface{}, key string) string {
	switch v := meta[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// metaTags accepts a YAML list (non-string items dropped) or a
// comma-separated string.
func metaTags(meta map[string]interface{}) []string {
	switch v := meta[keyTags].(type) {
	case []interface{}:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		return strings.Split(v, ",")
	default:
		return nil
	}
}

// metaTime reads a timestamp stored as a string or a native YAML timestamp.
// Anything unparseable reads as nil.
func metaTime(meta map[string]interface{}, key string) *time.Time {
	var t time.Time
	switch v := meta[key].(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := parseTimestamp(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		t = parsed
	default:
		return nil
	}
	t = t.UTC()
	return &t
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
