// Package search implements the vault's disk-persistent inverted index,
// backed by blevesearch/bleve/v2: incremental single-document upsert,
// a bulk reindex path, sanitized free-text search, and a hand-rolled
// snippet extractor pinned to an exact byte-offset algorithm (not
// bleve's own highlighter, so results stay byte-for-byte reproducible).
package search

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/oxidian/engine/internal/errs"
)

// indexedDoc is the document shape stored in the index: one per note path.
type indexedDoc struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Document is one note to be (re)indexed.
type Document struct {
	Path  string
	Title string
	Body  string
}

// Result is one ranked search hit.
type Result struct {
	Path    string
	Title   string
	Snippet string
	Score   float64
}

func buildMapping() mapping.IndexMapping {
	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = keyword.Name
	pathField.Store = true

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = en.AnalyzerName
	titleField.Store = true

	bodyField := bleve.NewTextFieldMapping()
	bodyField.Analyzer = en.AnalyzerName
	bodyField.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("path", pathField)
	doc.AddFieldMappingsAt("title", titleField)
	doc.AddFieldMappingsAt("body", bodyField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

// Dir is the vault-relative location of the on-disk index.
func Dir(vaultDir string) string {
	return filepath.Join(vaultDir, ".search_index")
}

// Open opens the index at dir, creating it fresh if it doesn't exist yet.
// It does not clear a writer lock left on an existing index; any open
// failure other than a missing index is returned as an IndexError.
func Open(dir string) (bleve.Index, error) {
	idx, err := bleve.Open(dir)
	if err == nil {
		return idx, nil
	}
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(dir, buildMapping())
		if err != nil {
			return nil, errs.Wrap(errs.IndexError, err, "creating search index at %q", dir)
		}
		return idx, nil
	}
	return nil, errs.Wrap(errs.IndexError, err, "opening search index at %q", dir)
}

// Upsert indexes (or replaces) the document for rel. Title is derived
// from the file stem. bleve's Index call is itself keyed by document
// id, so this one call realizes "delete by path then add".
func Upsert(idx bleve.Index, rel, content string) error {
	title := fileStem(rel)
	d := indexedDoc{Path: rel, Title: title, Body: content}
	if err := idx.Index(rel, d); err != nil {
		return errs.Wrap(errs.IndexError, err, "indexing %q", rel)
	}
	return nil
}

// Delete removes the document for path, if present.
func Delete(idx bleve.Index, path string) error {
	if err := idx.Delete(path); err != nil {
		return errs.Wrap(errs.IndexError, err, "deleting %q from search index", path)
	}
	return nil
}

// Reindex builds a fresh index in the sibling directory dir+".new",
// bulk-loads docs with a single batch, then removes the live directory,
// renames the new one into its place, and reopens. The swap is two steps,
// not one atomic rename: between them no index exists at dir.
func Reindex(dir string, docs []Document) (bleve.Index, error) {
	tmpDir := dir + ".new"
	if err := os.RemoveAll(tmpDir); err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "clearing stale reindex directory")
	}

	newIdx, err := bleve.New(tmpDir, buildMapping())
	if err != nil {
		return nil, errs.Wrap(errs.IndexError, err, "creating reindex directory at %q", tmpDir)
	}

	batch := newIdx.NewBatch()
	for _, d := range docs {
		if err := batch.Index(d.Path, indexedDoc{Path: d.Path, Title: d.Title, Body: d.Body}); err != nil {
			newIdx.Close()
			return nil, errs.Wrap(errs.IndexError, err, "batching %q", d.Path)
		}
	}
	if err := newIdx.Batch(batch); err != nil {
		newIdx.Close()
		return nil, errs.Wrap(errs.IndexError, err, "committing reindex batch")
	}
	if err := newIdx.Close(); err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "closing reindex directory")
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "removing old index directory")
	}
	if err := os.Rename(tmpDir, dir); err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "swapping reindex directory into place")
	}

	return Open(dir)
}

// queryOperatorChars are folded to spaces during sanitization, defusing
// bleve's query-string operator syntax.
const queryOperatorChars = `[]{}()~^":\!+-`

// sanitizeQuery strips a leading '#' (folds tag search into plain text
// search), blanks out operator characters, and trims the result.
func sanitizeQuery(q string) string {
	q = strings.TrimPrefix(q, "#")
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		if strings.ContainsRune(queryOperatorChars, r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Search sanitizes query, then runs an OR match over title/body,
// returning the top limit hits by score.
func Search(idx bleve.Index, query string, limit int) ([]Result, error) {
	sanitized := sanitizeQuery(query)
	if sanitized == "" {
		return nil, nil
	}

	titleQuery := bleve.NewMatchQuery(sanitized)
	titleQuery.SetField("title")
	bodyQuery := bleve.NewMatchQuery(sanitized)
	bodyQuery.SetField("body")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(titleQuery, bodyQuery))
	req.Size = limit
	req.Fields = []string{"path", "title", "body"}

	res, err := idx.Search(req)
	if err != nil {
		return nil, errs.Wrap(errs.IndexError, err, "searching for %q", query)
	}

	out := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		path, _ := hit.Fields["path"].(string)
		title, _ := hit.Fields["title"].(string)
		body, _ := hit.Fields["body"].(string)
		out = append(out, Result{
			Path:    path,
			Title:   title,
			Snippet: Snippet(body, sanitized, 150),
			Score:   hit.Score,
		})
	}
	return out, nil
}

// Snippet extracts up to maxChars of body centered on the earliest
// occurrence of any whitespace-split term in query (case-insensitive),
// truncating at codepoint boundaries and marking truncation with "...".
func Snippet(body, query string, maxChars int) string {
	lowerBody := strings.ToLower(body)
	terms := strings.Fields(strings.ToLower(query))

	matchPos := -1
	for _, term := range terms {
		idx := strings.Index(lowerBody, term)
		if idx < 0 {
			continue
		}
		if matchPos < 0 || idx < matchPos {
			matchPos = idx
		}
	}
	if matchPos < 0 {
		matchPos = 0
	}

	start := matchPos - maxChars/2
	if start < 0 {
		start = 0
	}
	end := start + maxChars
	if end > len(body) {
		end = len(body)
	}

	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}

	snippet := strings.ReplaceAll(body[start:end], "\n", " ")
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(body) {
		snippet += "..."
	}
	return snippet
}

func fileStem(rel string) string {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
