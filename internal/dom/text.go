package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockElements break text flow the way a browser's innerText does
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"details": true, "dialog": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "summary": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true, "tr": true,
	"ul": true, "button": true, "label": true,
}

// skippedElements never contribute visible text
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

// InnerText approximates the rendered text of a selection. Block elements and
// <br> produce line breaks and runs of whitespace collapse. Inline elements add
// no separator of their own, so "<b>W</b>estin" reads "Westin"
func InnerText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}

	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
		b.WriteByte('\n')
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}

// CollapsedText is the inner text on a single line
func CollapsedText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(InnerText(sel)), " ")
}

// Classes returns the class tokens of the first element in the selection
func Classes(sel *goquery.Selection) []string {
	class, ok := sel.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(class)
}

// HasClassFragment reports whether any class token contains one of the fragments
func HasClassFragment(sel *goquery.Selection, fragments ...string) bool {
	for _, class := range Classes(sel) {
		class = strings.ToLower(class)
		for _, f := range fragments {
			if strings.Contains(class, f) {
				return true
			}
		}
	}
	return false
}
