// Package canvas implements load/validate/save for the Obsidian-compatible
// .canvas JSON format. The core persists canvases verbatim; it does not
// compute layout or editing state (that stays with the host UI).
package canvas

import (
	"encoding/json"
	"os"

	"github.com/oxidian/engine/internal/errs"
	"github.com/oxidian/engine/internal/pathguard"
)

// validNodeTypes are the recognized canvas node discriminators.
var validNodeTypes = map[string]bool{"text": true, "file": true, "link": true, "group": true}

// Node is one canvas node. Known fields are typed; anything else the
// format carries (subpath, url, color, label, backgroundStyle, future
// fields) round-trips through Extra, the same way Frontmatter preserves
// unknown keys.
type Node struct {
	ID     string                 `json:"-"`
	X      float64                `json:"-"`
	Y      float64                `json:"-"`
	Width  float64                `json:"-"`
	Height float64                `json:"-"`
	Type   string                 `json:"-"`
	Extra  map[string]interface{} `json:"-"`
}

// Edge is one canvas edge connecting two nodes.
type Edge struct {
	ID       string                 `json:"-"`
	FromNode string                 `json:"-"`
	ToNode   string                 `json:"-"`
	Extra    map[string]interface{} `json:"-"`
}

// Canvas is the root .canvas file structure.
type Canvas struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func (n Node) MarshalJSON() ([]byte, error) {
	m := cloneExtra(n.Extra)
	m["id"] = n.ID
	m["x"] = n.X
	m["y"] = n.Y
	m["width"] = n.Width
	m["height"] = n.Height
	m["type"] = n.Type
	return json.Marshal(m)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	id, _ := m["id"].(string)
	nodeType, _ := m["type"].(string)
	if id == "" {
		return errs.New(errs.InvalidInput, "canvas node missing id")
	}
	if !validNodeTypes[nodeType] {
		return errs.New(errs.InvalidInput, "canvas node %q has invalid type %q", id, nodeType)
	}

	n.ID = id
	n.Type = nodeType
	n.X, _ = m["x"].(float64)
	n.Y, _ = m["y"].(float64)
	n.Width, _ = m["width"].(float64)
	n.Height, _ = m["height"].(float64)

	delete(m, "id")
	delete(m, "x")
	delete(m, "y")
	delete(m, "width")
	delete(m, "height")
	delete(m, "type")
	n.Extra = m
	return nil
}

func (e Edge) MarshalJSON() ([]byte, error) {
	m := cloneExtra(e.Extra)
	m["id"] = e.ID
	m["fromNode"] = e.FromNode
	m["toNode"] = e.ToNode
	return json.Marshal(m)
}

func (e *Edge) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	id, _ := m["id"].(string)
	fromNode, _ := m["fromNode"].(string)
	toNode, _ := m["toNode"].(string)
	if id == "" || fromNode == "" || toNode == "" {
		return errs.New(errs.InvalidInput, "canvas edge missing id, fromNode, or toNode")
	}

	e.ID = id
	e.FromNode = fromNode
	e.ToNode = toNode

	delete(m, "id")
	delete(m, "fromNode")
	delete(m, "toNode")
	e.Extra = m
	return nil
}

func cloneExtra(extra map[string]interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// Parse decodes raw .canvas JSON. An empty/blank file decodes to an empty
// canvas, matching how the host creates a brand-new canvas.
func Parse(raw string) (Canvas, error) {
	if isBlank(raw) {
		return Canvas{}, nil
	}

	var c Canvas
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Canvas{}, errs.Wrap(errs.InvalidInput, err, "malformed canvas JSON")
	}
	return c, nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// Serialize renders c back to indented JSON for persistence.
func Serialize(c Canvas) (string, error) {
	if c.Nodes == nil {
		c.Nodes = []Node{}
	}
	if c.Edges == nil {
		c.Edges = []Edge{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", errs.Wrap(errs.IOFailure, err, "encoding canvas JSON")
	}
	return string(data), nil
}

// Load reads and parses the .canvas file at vaultDir/rel.
func Load(vaultDir, rel string) (Canvas, error) {
	full, err := pathguard.Validate(vaultDir, rel)
	if err != nil {
		return Canvas{}, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return Canvas{}, nil
		}
		return Canvas{}, errs.Wrap(errs.IOFailure, err, "reading canvas file %q", rel)
	}
	return Parse(string(data))
}

// Save atomically writes c to vaultDir/rel as indented JSON.
func Save(vaultDir, rel string, c Canvas) error {
	full, err := pathguard.Validate(vaultDir, rel)
	if err != nil {
		return err
	}

	content, err := Serialize(c)
	if err != nil {
		return err
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return errs.Wrap(errs.IOFailure, err, "writing canvas file %q", rel)
	}
	return os.Rename(tmp, full)
}
