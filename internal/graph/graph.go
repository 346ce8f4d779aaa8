// Package graph derives a node/edge graph from a meta cache snapshot for
// visualization.
package graph

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/oxidian/engine/internal/extract"
	"github.com/oxidian/engine/internal/metacache"
)

// Node is one vault file.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Edge is a resolved link from source to target, both file paths.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the full node/edge set.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build derives nodes and edges from entries, a snapshot of the meta
// cache. Resolution rule for a link text L: split on '|' take first,
// split on '#' take first, trim; match to a path whose stem equals L or
// whose path ends with "/L". Ties break on first match in path-sorted
// iteration order. Unresolvable links are dropped.
func Build(entries map[string]metacache.Entry) Graph {
	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	nodes := make([]Node, 0, len(paths))
	for _, path := range paths {
		nodes = append(nodes, Node{ID: path, Name: fileStem(path)})
	}

	var edges []Edge
	for _, source := range paths {
		for _, raw := range entries[source].Links {
			target := resolve(raw, paths)
			if target == "" || target == source {
				continue
			}
			edges = append(edges, Edge{Source: source, Target: target})
		}
	}

	return Graph{Nodes: nodes, Edges: edges}
}

func resolve(raw string, sortedPaths []string) string {
	l := extract.ResolveLinkTarget(raw)
	for _, path := range sortedPaths {
		if fileStem(path) == l || strings.HasSuffix(path, "/"+l) {
			return path
		}
	}
	return ""
}

func fileStem(rel string) string {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
