// Package markdown turns post and reply text into sanitized HTML for clients
// that display it. Stored content is never modified.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// >>N after goldmark escaped it
var postLinkRegex = regexp.MustCompile(`&gt;&gt;(\d+)`)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewListParser(), 300),
			util.Prioritized(parser.NewListItemParser(), 400),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile("^post-link$")).OnElements("a")
	policy.RequireNoFollowOnLinks(false)
	policy.AllowRelativeURLs(true)

	return &Renderer{md: md, policy: policy}
}

// Render converts text to HTML. >>N becomes a link to post N.
// On a markdown error the escaped plain text is returned.
func (r *Renderer) Render(text string) string {
	var buf bytes.Buffer
	rendered := ""
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		rendered = strings.ReplaceAll(bluemonday.StrictPolicy().Sanitize(text), "\n", "<br>")
	} else {
		rendered = strings.TrimSpace(buf.String())
	}

	linked := postLinkRegex.ReplaceAllString(rendered, `<a class="post-link" href="/v1/posts/$1">&gt;&gt;$1</a>`)
	return r.policy.Sanitize(linked)
}
