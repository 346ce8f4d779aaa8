package extract

import "regexp"

// maskPass masks one type of inert zone: a region of text that extractors
// should never look inside (fenced code, inline code, comments, math).
// The extractor needs its own mask pass, independent of the markdown
// renderer's, because it must be strict about code fences even when
// rendering tolerates malformed ones.
type maskPass func(text string) string

var inertPasses = []maskPass{
	maskFencedCodeBlocks,
	maskInlineCode,
	maskObsidianComments,
	maskHTMLComments,
	maskDisplayMath,
	maskInlineMath,
}

// maskInertContent applies all passes in order. The result has the same
// byte length and line count as the input; content inside inert zones is
// replaced with spaces (newlines preserved) so line numbers stay stable.
func maskInertContent(text string) string {
	for _, pass := range inertPasses {
		text = pass(text)
	}
	return text
}

func maskRegion(text []byte, start, end int) {
	for i := start; i < end; i++ {
		if text[i] != '\n' {
			text[i] = ' '
		}
	}
}

var fencedCodePattern = regexp.MustCompile("(?m)^(```\\w*)\n")
var closingFencePattern = regexp.MustCompile("(?m)^```[ \t]*$")

// maskFencedCodeBlocks masks content inside ``` fences. An unclosed fence
// at EOF is masked to end of file.
func maskFencedCodeBlocks(text string) string {
	buf := []byte(text)
	pos := 0

	for pos < len(buf) {
		loc := fencedCodePattern.FindIndex(buf[pos:])
		if loc == nil {
			break
		}

		contentStart := pos + loc[1]
		closeLoc := closingFencePattern.FindIndex(buf[contentStart:])
		if closeLoc == nil {
			maskRegion(buf, contentStart, len(buf))
			break
		}

		contentEnd := contentStart + closeLoc[0]
		maskRegion(buf, contentStart, contentEnd)
		pos = contentStart + closeLoc[1]
	}

	return string(buf)
}

var doubleBacktickPattern = regexp.MustCompile("``([^`\\n]+)``")
var singleBacktickPattern = regexp.MustCompile("`([^`\\n]+)`")

// maskInlineCode masks content inside ` ... ` and `` ... `` spans. Runs
// after fenced blocks so backticks already masked there don't confuse it.
func maskInlineCode(text string) string {
	buf := []byte(text)

	for _, loc := range doubleBacktickPattern.FindAllSubmatchIndex(buf, -1) {
		maskRegion(buf, loc[2], loc[3])
	}
	for _, loc := range singleBacktickPattern.FindAllSubmatchIndex(buf, -1) {
		maskRegion(buf, loc[2], loc[3])
	}

	return string(buf)
}

var obsidianCommentPattern = regexp.MustCompile(`(?s)%%(.+?)%%`)

func maskObsidianComments(text string) string {
	buf := []byte(text)
	for _, loc := range obsidianCommentPattern.FindAllSubmatchIndex(buf, -1) {
		maskRegion(buf, loc[2], loc[3])
	}
	return string(buf)
}

var htmlCommentPattern = regexp.MustCompile(`(?s)<!--(.*?)-->`)

func maskHTMLComments(text string) string {
	buf := []byte(text)
	for _, loc := range htmlCommentPattern.FindAllSubmatchIndex(buf, -1) {
		maskRegion(buf, loc[2], loc[3])
	}
	return string(buf)
}

var displayMathPattern = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)

func maskDisplayMath(text string) string {
	buf := []byte(text)
	for _, loc := range displayMathPattern.FindAllSubmatchIndex(buf, -1) {
		maskRegion(buf, loc[2], loc[3])
	}
	return string(buf)
}

var inlineMathPattern = regexp.MustCompile(`\$([^\s$][^$\n]*?[^\s$])\$`)

func maskInlineMath(text string) string {
	buf := []byte(text)
	for _, loc := range inlineMathPattern.FindAllSubmatchIndex(buf, -1) {
		maskRegion(buf, loc[2], loc[3])
	}
	return string(buf)
}
