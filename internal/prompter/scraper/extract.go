package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxPerSource caps the prompts kept from a single page.
const MaxPerSource = 20

const (
	minPromptLen = 15
	maxPromptLen = 250
	// Content blocks shorter than this are not split into sentences.
	minBlockLen = 20
	// Sentences taken from each content block.
	chunksPerBlock = 3
)

// Navigation, social and legal boilerplate that never makes a drawing prompt.
var junkKeywords = []string{
	"broken", "fixed", "subscribe", "comment", "reply", "author", "posted",
	"share", "like", "follow", "support", "patreon", "fund", "donation",
	"click here", "read more", "learn more", "sign up", "log in", "copyright",
	"all rights reserved", "terms of service", "privacy policy", "contact us",
	"newsletter", "email", "@", "http", "www", "admin", "moderator",
}

var (
	tagRe      = regexp.MustCompile(`<[^>]*>`)
	spaceRe    = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
)

var contentClasses = []string{"wp-content", "entry-content", "post-content"}

// CleanText strips leftover markup and collapses whitespace.
func CleanText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// IsValidPrompt reports whether cleaned text can be offered as a prompt.
func IsValidPrompt(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range junkKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	n := utf8.RuneCountInString(s)
	return n > minPromptLen && n < maxPromptLen
}

// Extract pulls candidate prompts out of an HTML page: list items, then
// paragraphs, then the first sentences of article-like content blocks.
// Results are deduplicated in first-seen order and capped at MaxPerSource.
func Extract(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, n := range findAll(doc, isTag(atom.Li)) {
		if t := CleanText(textOf(n)); IsValidPrompt(t) {
			add(t)
		}
	}
	for _, n := range findAll(doc, isTag(atom.P)) {
		if t := CleanText(textOf(n)); IsValidPrompt(t) {
			add(t)
		}
	}
	for _, n := range findAll(doc, isContentBlock) {
		t := CleanText(textOf(n))
		if utf8.RuneCountInString(t) <= minBlockLen {
			continue
		}
		taken := 0
		for _, chunk := range sentenceRe.Split(t, -1) {
			chunk = strings.TrimSpace(chunk)
			if !IsValidPrompt(chunk) {
				continue
			}
			add(chunk)
			if taken++; taken == chunksPerBlock {
				break
			}
		}
	}

	if len(out) > MaxPerSource {
		out = out[:MaxPerSource]
	}
	return out, nil
}

func isTag(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func isContentBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.DataAtom == atom.Article {
		return true
	}
	if n.DataAtom != atom.Div {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		for _, want := range contentClasses {
			if c == want {
				return true
			}
		}
	}
	return false
}

// findAll returns matching nodes in document order.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// textOf concatenates the text of n's descendants, skipping scripts and styles.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
