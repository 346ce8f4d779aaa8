// Package markdown renders vault note bodies to sanitized HTML: a
// CommonMark/GFM pass via goldmark, wiki-links and inline #tags as their
// own inline nodes (so the renderer can tag them with data attributes
// instead of leaving them as plain text), fenced-code syntax highlighting
// via chroma, and a final bluemonday sanitization pass before the HTML
// reaches a host webview.
package markdown

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"unicode"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/wikilink"

	"github.com/oxidian/engine/internal/errs"
)

// LinkResolver resolves a wiki-link target (the text between [[ ]], before
// any |display or #anchor suffix) to a navigable href. ok is false for a
// target that doesn't resolve to any note in the vault.
type LinkResolver func(target string) (href string, ok bool)

var sanitizePolicy = buildSanitizePolicy()

func buildSanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").OnElements("a", "sup", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("data-target", "data-fragment", "data-href", "data-unresolved").OnElements("span")
	p.AllowAttrs("data-tag").OnElements("span")
	return p
}

// Render converts a note's raw Markdown body to sanitized HTML. resolve
// may be nil, in which case every wiki-link renders as unresolved.
func Render(content string, resolve LinkResolver) (string, error) {
	if resolve == nil {
		resolve = func(string) (string, bool) { return "", false }
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
			&inlineExtension{resolve: resolve},
		),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", errs.Wrap(errs.InvalidInput, err, "rendering markdown")
	}

	return sanitizePolicy.Sanitize(buf.String()), nil
}

// inlineExtension registers the wiki-link and inline-tag inline parsers
// and their corresponding HTML node renderers.
type inlineExtension struct {
	resolve LinkResolver
}

func (e *inlineExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&wikilinkParser{}, 199),
		util.Prioritized(&tagParser{}, 199),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&wikilinkHTMLRenderer{resolve: e.resolve}, 199),
		util.Prioritized(&tagHTMLRenderer{}, 199),
	))
}

// --- wiki-links: [[target]], [[target|display]], [[target#anchor]] ---

// wikilinkParser recognizes [[...]] tokens and builds a wikilink.Node,
// reusing that package's shared AST shape (Target/Fragment/Alternative)
// rather than inventing a parallel one.
type wikilinkParser struct{}

func (p *wikilinkParser) Trigger() []byte { return []byte{'['} }

func (p *wikilinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 4 || line[0] != '[' || line[1] != '[' {
		return nil
	}

	closeIdx := bytes.Index(line, []byte("]]"))
	if closeIdx < 0 {
		return nil
	}

	inner := string(line[2:closeIdx])
	target := inner
	alt := ""
	if idx := strings.IndexByte(inner, '|'); idx >= 0 {
		target = inner[:idx]
		alt = inner[idx+1:]
	}
	fragment := ""
	if idx := strings.IndexByte(target, '#'); idx >= 0 {
		fragment = target[idx+1:]
		target = target[:idx]
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}

	block.Advance(closeIdx + 2)
	return &wikilink.Node{
		Target:      []byte(target),
		Fragment:    []byte(fragment),
		Alternative: []byte(alt),
	}
}

// wikilinkHTMLRenderer renders wikilink.Node as a <span> carrying the raw
// target/fragment and the resolved href (if any), leaving navigation to
// the host shell that owns the click handler.
type wikilinkHTMLRenderer struct {
	resolve LinkResolver
}

func (r *wikilinkHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(wikilink.KindWikilink, r.render)
}

func (r *wikilinkHTMLRenderer) render(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	node := n.(*wikilink.Node)
	target := string(node.Target)
	display := string(node.Alternative)
	if display == "" {
		display = target
	}

	href, ok := r.resolve(target)

	w.WriteString(`<span class="wiki-link" data-target="`)
	w.WriteString(html.EscapeString(target))
	w.WriteString(`"`)
	if len(node.Fragment) > 0 {
		w.WriteString(` data-fragment="`)
		w.WriteString(html.EscapeString(string(node.Fragment)))
		w.WriteString(`"`)
	}
	if ok {
		w.WriteString(` data-href="`)
		w.WriteString(html.EscapeString(href))
		w.WriteString(`"`)
	} else {
		w.WriteString(` data-unresolved="true"`)
	}
	w.WriteString(`>`)
	w.WriteString(html.EscapeString(display))
	w.WriteString(`</span>`)

	return ast.WalkSkipChildren, nil
}

// --- inline #tags ---

var tagBodyPattern = regexp.MustCompile(`^#(\p{L}[\p{L}\p{N}_/-]*)`)

type tagNode struct {
	ast.BaseInline
	Tag []byte
}

var kindTag = ast.NewNodeKind("OxidianTag")

func (n *tagNode) Kind() ast.NodeKind { return kindTag }

func (n *tagNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Tag": string(n.Tag)}, nil)
}

// tagParser recognizes inline #tag tokens, the same shape extract.Tags
// looks for, as long as they're not glued to a preceding word character
// (so "C#" in running prose isn't treated as a tag).
type tagParser struct{}

func (p *tagParser) Trigger() []byte { return []byte{'#'} }

func (p *tagParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	prec := block.PrecedingCharacter()
	if unicode.IsLetter(prec) || unicode.IsDigit(prec) {
		return nil
	}

	line, _ := block.PeekLine()
	m := tagBodyPattern.FindSubmatch(line)
	if m == nil {
		return nil
	}

	block.Advance(len(m[0]))
	return &tagNode{Tag: m[1]}
}

type tagHTMLRenderer struct{}

func (r *tagHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindTag, r.render)
}

func (r *tagHTMLRenderer) render(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*tagNode)
	tag := string(node.Tag)
	w.WriteString(`<span class="tag" data-tag="`)
	w.WriteString(html.EscapeString(tag))
	w.WriteString(`">#`)
	w.WriteString(html.EscapeString(tag))
	w.WriteString(`</span>`)
	return ast.WalkSkipChildren, nil
}

