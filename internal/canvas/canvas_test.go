package canvas

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseEmptyContentReturnsEmptyCanvas(t *testing.T) {
	c, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Nodes) != 0 || len(c.Edges) != 0 {
		t.Errorf("expected empty canvas, got %+v", c)
	}

	c2, err := Parse("   \n\t")
	if err != nil {
		t.Fatal(err)
	}
	if len(c2.Nodes) != 0 || len(c2.Edges) != 0 {
		t.Errorf("expected empty canvas for blank content, got %+v", c2)
	}
}

func TestParseObsidianCompatFormat(t *testing.T) {
	raw := `{
		"nodes": [
			{"id": "n1", "x": 0, "y": 0, "width": 200, "height": 100, "type": "text", "text": "hello"},
			{"id": "n2", "x": 250, "y": 0, "width": 200, "height": 100, "type": "file", "file": "notes/a.md"},
			{"id": "n3", "x": 0, "y": 200, "width": 200, "height": 100, "type": "link", "url": "https://example.com"},
			{"id": "n4", "x": 0, "y": 400, "width": 400, "height": 300, "type": "group", "label": "Group A", "backgroundStyle": "cover"}
		],
		"edges": [
			{"id": "e1", "fromNode": "n1", "toNode": "n2", "fromSide": "right", "toSide": "left", "color": "4", "label": "relates to"}
		]
	}`

	c, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Nodes) != 4 || len(c.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(c.Nodes), len(c.Edges))
	}
	if c.Nodes[0].Type != "text" || c.Nodes[0].Extra["text"] != "hello" {
		t.Errorf("node 0 = %+v", c.Nodes[0])
	}
	if c.Nodes[1].Extra["file"] != "notes/a.md" {
		t.Errorf("node 1 = %+v", c.Nodes[1])
	}
	if c.Edges[0].FromNode != "n1" || c.Edges[0].ToNode != "n2" || c.Edges[0].Extra["fromSide"] != "right" {
		t.Errorf("edge 0 = %+v", c.Edges[0])
	}
}

func TestParseRejectsMissingNodeID(t *testing.T) {
	_, err := Parse(`{"nodes":[{"x":0,"y":0,"width":1,"height":1,"type":"text"}],"edges":[]}`)
	if err == nil {
		t.Fatal("expected error for missing node id")
	}
}

func TestParseRejectsInvalidNodeType(t *testing.T) {
	_, err := Parse(`{"nodes":[{"id":"n1","x":0,"y":0,"width":1,"height":1,"type":"bogus"}],"edges":[]}`)
	if err == nil {
		t.Fatal("expected error for invalid node type")
	}
}

func TestParseRejectsEdgeMissingEndpoints(t *testing.T) {
	_, err := Parse(`{"nodes":[],"edges":[{"id":"e1","fromNode":"n1"}]}`)
	if err == nil {
		t.Fatal("expected error for edge missing toNode")
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse("not json")
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestSerializeParseRoundTripPreservesUnknownFields(t *testing.T) {
	c := Canvas{
		Nodes: []Node{
			{ID: "n1", X: 1, Y: 2, Width: 3, Height: 4, Type: "text", Extra: map[string]interface{}{"text": "hi", "color": "2"}},
		},
		Edges: []Edge{
			{ID: "e1", FromNode: "n1", ToNode: "n1", Extra: map[string]interface{}{"label": "self"}},
		},
	}

	out, err := Serialize(c)
	if err != nil {
		t.Fatal(err)
	}

	back, err := Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if back.Nodes[0].Extra["color"] != "2" || back.Nodes[0].Extra["text"] != "hi" {
		t.Errorf("unknown node fields not preserved: %+v", back.Nodes[0].Extra)
	}
	if back.Edges[0].Extra["label"] != "self" {
		t.Errorf("unknown edge fields not preserved: %+v", back.Edges[0].Extra)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := Canvas{
		Nodes: []Node{{ID: "n1", X: 0, Y: 0, Width: 100, Height: 100, Type: "text", Extra: map[string]interface{}{"text": "hi"}}},
		Edges: []Edge{},
	}

	if err := Save(dir, "board.canvas", c); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir, "board.canvas")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Nodes) != 1 || loaded.Nodes[0].ID != "n1" {
		t.Errorf("loaded = %+v", loaded)
	}

	if _, err := os.Stat(filepath.Join(dir, "board.canvas")); err != nil {
		t.Errorf("expected board.canvas to exist: %v", err)
	}
}

func TestLoadMissingFileReturnsEmptyCanvas(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir, "missing.canvas")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Nodes) != 0 || len(c.Edges) != 0 {
		t.Errorf("expected empty canvas, got %+v", c)
	}
}

func TestLoadRejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, "../outside.canvas")
	if err == nil {
		t.Fatal("expected path escape error")
	}
}
