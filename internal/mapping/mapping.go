// Package mapping generates, reads and validates the YAML file that assigns
// user ids to respondent keys.
//
// The file is a YAML mapping from respondent key to an entry:
//
//	A001:
//	  user_id: 1
//	  name: 田中
//
// user_id is null until the operator fills it in. name is reference only.
// A bare integer or null value (A001: 1) is accepted as shorthand.
package mapping

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/usermap/internal/fsutil"
	"github.com/mesh-intelligence/usermap/internal/survey"
	"github.com/mesh-intelligence/usermap/pkg/types"
)

// Entry field names inside the YAML file.
const (
	fieldUserID = "user_id"
	fieldName   = "name"
)

// fileHeader is written above the generated entries.
const fileHeader = `# User id mapping
# Set user_id for every respondent key: a unique integer per respondent.
# Entries left as null are treated as unmapped by process.
# name is reference only and is not used for matching.

`

// Encode renders m as YAML with the explanatory header. Output is
// deterministic: entries in key order, two-space indentation.
func Encode(m *types.Mapping) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeTo(w io.Writer, m *types.Mapping) error {
	if _, err := io.WriteString(w, fileHeader); err != nil {
		return err
	}
	if m.Len() == 0 {
		_, err := io.WriteString(w, "{}\n")
		return err
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m.Entries {
		root.Content = append(root.Content, strNode(e.Key), entryNode(e))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	return enc.Close()
}

func entryNode(e types.MappingEntry) *yaml.Node {
	id := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	if e.UserID != nil {
		id = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(*e.UserID)}
	}
	n := &yaml.Node{Kind: yaml.MappingNode}
	n.Content = append(n.Content, strNode(fieldUserID), id)
	if e.Name != "" {
		n.Content = append(n.Content, strNode(fieldName), strNode(e.Name))
	}
	return n
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Save writes m to path atomically, creating the parent directory. An
// existing file is only replaced when force is set, since it usually holds
// hand-assigned ids.
func Save(path string, m *types.Mapping, force bool) error {
	if !force {
		exists, err := fsutil.Exists(path)
		if err != nil {
			return fmt.Errorf("%w: stat %s: %w", types.ErrIO, path, err)
		}
		if exists {
			return fmt.Errorf("%w: %s (use --force to overwrite)", types.ErrExists, path)
		}
	}

	if err := fsutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return encodeTo(w, m)
	}); err != nil {
		return fmt.Errorf("%w: writing %s: %w", types.ErrIO, path, err)
	}
	return nil
}

// Load reads and decodes the mapping file at path.
func Load(path string) (*types.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", types.ErrIO, path, err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses mapping YAML. Keys are normalized the same way respondent
// keys are derived. Two entries with the same key collapse when they agree
// on user_id and fail with ErrDuplicateKey otherwise.
func Decode(data []byte) (*types.Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrParse, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: mapping file is empty", types.ErrParse)
	}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must be a mapping of respondent keys", types.ErrParse, root.Line)
	}

	var entries []types.MappingEntry
	lines := make(map[string]int)
	pos := make(map[string]int)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := resolve(root.Content[i]), resolve(root.Content[i+1])
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: respondent key must be a scalar", types.ErrParse, k.Line)
		}
		key := survey.NormalizeField(k.Value)
		if key == "" {
			return nil, fmt.Errorf("%w: line %d: empty respondent key", types.ErrParse, k.Line)
		}

		e, err := decodeEntry(key, v)
		if err != nil {
			return nil, err
		}

		if j, dup := pos[key]; dup {
			if !sameID(entries[j].UserID, e.UserID) {
				return nil, fmt.Errorf("%w: %q at lines %d and %d has different user ids",
					types.ErrDuplicateKey, key, lines[key], k.Line)
			}
			continue
		}
		pos[key] = len(entries)
		lines[key] = k.Line
		entries = append(entries, e)
	}
	return types.NewMapping(entries), nil
}

func decodeEntry(key string, v *yaml.Node) (types.MappingEntry, error) {
	e := types.MappingEntry{Key: key}
	switch v.Kind {
	case yaml.ScalarNode:
		id, err := decodeID(key, v)
		if err != nil {
			return e, err
		}
		e.UserID = id
	case yaml.MappingNode:
		for i := 0; i+1 < len(v.Content); i += 2 {
			f, fv := v.Content[i], resolve(v.Content[i+1])
			switch f.Value {
			case fieldUserID:
				id, err := decodeID(key, fv)
				if err != nil {
					return e, err
				}
				e.UserID = id
			case fieldName:
				if fv.Kind != yaml.ScalarNode {
					return e, fmt.Errorf("%w: line %d: %q name must be a string", types.ErrParse, fv.Line, key)
				}
				if fv.Tag != "!!null" {
					e.Name = fv.Value
				}
			}
		}
	default:
		return e, fmt.Errorf("%w: line %d: %q must map to an entry or a user id", types.ErrParse, v.Line, key)
	}
	return e, nil
}

func decodeID(key string, n *yaml.Node) (*int, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: line %d: %q user_id must be an integer", types.ErrParse, n.Line, key)
	}
	switch n.Tag {
	case "!!null":
		return nil, nil
	case "!!int":
		var id int
		if err := n.Decode(&id); err != nil {
			return nil, fmt.Errorf("%w: line %d: %q user_id: %w", types.ErrParse, n.Line, key, err)
		}
		return &id, nil
	default:
		return nil, fmt.Errorf("%w: line %d: %q user_id must be an integer, got %q", types.ErrParse, n.Line, key, n.Value)
	}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func sameID(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
