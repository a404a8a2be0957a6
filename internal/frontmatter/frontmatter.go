// Package frontmatter parses and serializes the leading `---`-delimited YAML
// metadata block of a ztlctl markdown file, preserving comment and
// unknown-key placement across a parse/re-serialize round-trip (§4.2).
//
// Unlike a plain map[string]any unmarshal, this package walks yaml.v3's
// yaml.Node tree directly: each mapping entry's HeadComment/LineComment/
// FootComment travels with it through canonicalization, and keys the
// registry doesn't recognize are kept in their original relative position.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// CanonicalOrder is the key ordering frontmatter serialization follows.
// Extra keys not in this list are preserved in-place, after the canonical
// keys that precede them in the original document.
var CanonicalOrder = []string{
	"id", "type", "subtype", "status", "maturity", "title", "session",
	"tags", "aliases", "topic", "links", "created", "modified",
}

// Document is a parsed frontmatter block plus the markdown body that
// followed it.
type Document struct {
	node *yaml.Node // the mapping node, kind yaml.MappingNode
	Body string
}

// Parse splits raw file content into its frontmatter Document and body. If
// the file has no leading frontmatter delimiter, the Document is empty and
// the whole input is returned as Body.
func Parse(content string) (*Document, error) {
	if !strings.HasPrefix(content, delimiter) {
		return &Document{node: emptyMapping(), Body: content}, nil
	}
	rest := content[len(delimiter):]
	end := strings.Index(rest, "\n"+delimiter)
	if end == -1 {
		return nil, fmt.Errorf("frontmatter: missing closing %q delimiter", delimiter)
	}
	yamlBlock := strings.TrimPrefix(rest[:end], "\n")
	body := strings.TrimPrefix(rest[end+len("\n"+delimiter):], "\n")

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yamlBlock), &doc); err != nil {
		return nil, fmt.Errorf("frontmatter: parse: %w", err)
	}
	mapping := emptyMapping()
	if len(doc.Content) > 0 {
		mapping = doc.Content[0]
	}
	return &Document{node: mapping, Body: body}, nil
}

func emptyMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// Get returns the scalar string value for key, and whether it was present.
func (d *Document) Get(key string) (string, bool) {
	_, value := d.find(key)
	if value == nil {
		return "", false
	}
	return value.Value, true
}

// GetSequence returns the string values of a sequence-valued key (e.g. tags,
// aliases), and whether the key was present.
func (d *Document) GetSequence(key string) ([]string, bool) {
	_, value := d.find(key)
	if value == nil || value.Kind != yaml.SequenceNode {
		return nil, false
	}
	out := make([]string, 0, len(value.Content))
	for _, item := range value.Content {
		out = append(out, item.Value)
	}
	return out, true
}

// Set assigns a scalar key, preserving any existing comments attached to
// that key, or appending a new entry at the end if the key is new.
func (d *Document) Set(key, value string) {
	keyNode, valueNode := d.find(key)
	if keyNode != nil {
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = "!!str"
		valueNode.Value = value
		return
	}
	d.node.Content = append(d.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}

// SetSequence assigns a sequence-valued key.
func (d *Document) SetSequence(key string, values []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
	}
	keyNode, _ := d.find(key)
	if keyNode != nil {
		for i := 0; i < len(d.node.Content); i += 2 {
			if d.node.Content[i] == keyNode {
				d.node.Content[i+1] = seq
				return
			}
		}
	}
	d.node.Content = append(d.node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, seq)
}

// SetMapping assigns a key whose value is itself a mapping from string to a
// list of strings (the `links` key's `link-type -> [ids]` shape, §3).
func (d *Document) SetMapping(key string, value map[string][]string) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range sortedKeys(value) {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, v := range value[k] {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k}, seq)
	}
	keyNode, _ := d.find(key)
	if keyNode != nil {
		for i := 0; i < len(d.node.Content); i += 2 {
			if d.node.Content[i] == keyNode {
				d.node.Content[i+1] = mapping
				return
			}
		}
	}
	d.node.Content = append(d.node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, mapping)
}

// GetMapping reads back a key set with SetMapping.
func (d *Document) GetMapping(key string) (map[string][]string, bool) {
	_, value := d.find(key)
	if value == nil || value.Kind != yaml.MappingNode {
		return nil, false
	}
	out := map[string][]string{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k := value.Content[i].Value
		var vals []string
		for _, item := range value.Content[i+1].Content {
			vals = append(vals, item.Value)
		}
		out[k] = vals
	}
	return out, true
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// Keys returns the keys present, in their current document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.node.Content)/2)
	for i := 0; i < len(d.node.Content); i += 2 {
		keys = append(keys, d.node.Content[i].Value)
	}
	return keys
}

func (d *Document) find(key string) (keyNode, valueNode *yaml.Node) {
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if d.node.Content[i].Value == key {
			return d.node.Content[i], d.node.Content[i+1]
		}
	}
	return nil, nil
}

// Reorder splices the mapping's content pairs into CanonicalOrder, keeping
// each pair's attached comment nodes. Keys not in CanonicalOrder keep their
// original relative position, appended after the canonical keys that
// preceded them in the source document. This implements `fix aggressive`'s
// frontmatter key reordering (§4.11).
func (d *Document) Reorder() {
	type pair struct {
		key, value *yaml.Node
	}
	byKey := map[string]pair{}
	var leading []pair
	extrasAfter := map[string][]pair{}
	lastCanonical := ""
	canonicalSet := make(map[string]bool, len(CanonicalOrder))
	for _, k := range CanonicalOrder {
		canonicalSet[k] = true
	}
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		k := d.node.Content[i].Value
		p := pair{d.node.Content[i], d.node.Content[i+1]}
		switch {
		case canonicalSet[k]:
			byKey[k] = p
			lastCanonical = k
		case lastCanonical == "":
			leading = append(leading, p)
		default:
			extrasAfter[lastCanonical] = append(extrasAfter[lastCanonical], p)
		}
	}
	reordered := make([]*yaml.Node, 0, len(d.node.Content))
	for _, p := range leading {
		reordered = append(reordered, p.key, p.value)
	}
	for _, k := range CanonicalOrder {
		if p, ok := byKey[k]; ok {
			reordered = append(reordered, p.key, p.value)
		}
		for _, p := range extrasAfter[k] {
			reordered = append(reordered, p.key, p.value)
		}
	}
	d.node.Content = reordered
}

// Render serializes the frontmatter block and body back into file content.
func (d *Document) Render() (string, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{d.node}}
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("frontmatter: render: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("frontmatter: render: %w", err)
	}
	var out strings.Builder
	out.WriteString(delimiter)
	out.WriteString("\n")
	out.WriteString(buf.String())
	out.WriteString(delimiter)
	out.WriteString("\n")
	out.WriteString(d.Body)
	return out.String(), nil
}
