package fetch

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// maxContentChars bounds extracted body text.
	maxContentChars  = 10000
	truncationMarker = "\n\n[Content truncated...]"
)

// contentClasses and contentIDs are the usual names sites give their
// main-content container when they don't use semantic elements.
var (
	contentClasses = []string{"content", "main-content", "article-content", "post-content", "entry-content"}
	contentIDs     = []string{"content", "main", "article", "post"}
)

// findTitle returns the trimmed <title> text, or "".
func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// findDescription returns the meta description, falling back to the
// Open Graph description.
func findDescription(doc *html.Node) string {
	if d := findMeta(doc, "name", "description"); d != "" {
		return d
	}
	return findMeta(doc, "property", "og:description")
}

// findMeta returns the content attribute of <meta key=val content=...>.
func findMeta(n *html.Node, key, val string) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
		var matched bool
		var content string
		for _, a := range n.Attr {
			switch a.Key {
			case key:
				matched = strings.EqualFold(a.Val, val)
			case "content":
				content = a.Val
			}
		}
		if matched {
			return strings.TrimSpace(content)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := findMeta(c, key, val); m != "" {
			return m
		}
	}
	return ""
}

// extractMainContent returns the visible text of the page's main content
// container, bounded to maxContentChars with a truncation marker.
//
// Container preference: <main>/<article>, then the common content class
// names, then the common content ids, then <body>. Script, style, and
// navigation-like elements are skipped during text collection.
func extractMainContent(doc *html.Node) string {
	root := findElement(doc, atom.Main)
	if root == nil {
		root = findElement(doc, atom.Article)
	}
	if root == nil {
		for _, class := range contentClasses {
			if root = findByAttr(doc, "class", class); root != nil {
				break
			}
		}
	}
	if root == nil {
		for _, id := range contentIDs {
			if root = findByAttr(doc, "id", id); root != nil {
				break
			}
		}
	}
	if root == nil {
		root = findElement(doc, atom.Body)
	}
	if root == nil {
		root = doc
	}

	text := collectText(root)

	// Keep only substantial lines; single characters and stray
	// punctuation add noise without meaning.
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 3 {
			lines = append(lines, line)
		}
	}
	content := strings.Join(lines, "\n")

	if len(content) > maxContentChars {
		content = content[:maxContentChars] + truncationMarker
	}
	return content
}

// findElement returns the first element with the given atom, depth-first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// findByAttr returns the first element whose attribute contains val as
// a whitespace-separated token (class lists carry multiple names).
func findByAttr(n *html.Node, key, val string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key != key {
				continue
			}
			for _, token := range strings.Fields(a.Val) {
				if strings.EqualFold(token, val) {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByAttr(c, key, val); found != nil {
			return found
		}
	}
	return nil
}

// collectText extracts visible text from a subtree, one block element
// per line, skipping boilerplate elements.
func collectText(root *html.Node) string {
	var sb strings.Builder
	atLineStart := true

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Header, atom.Footer, atom.Aside:
				return
			case atom.P, atom.Div, atom.Br, atom.Li, atom.Tr,
				atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				if !atLineStart {
					sb.WriteByte('\n')
					atLineStart = true
				}
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if !atLineStart {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
				atLineStart = false
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sb.String()
}
