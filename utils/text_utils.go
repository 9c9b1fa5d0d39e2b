package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
)

// richTextPolicy allows the formatting a rich text editor produces and strips
// scripts, event handlers and unsafe urls. A bluemonday policy is safe for
// concurrent use once built.
var richTextPolicy = bluemonday.UGCPolicy()

// SanitizeRichText cleans user supplied html before it is persisted.
func SanitizeRichText(html string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(html))
}

// HtmlExcerpt returns the visible text of an html fragment with whitespace
// collapsed, cut to at most maxRunes runes (plus "..." when cut).
func HtmlExcerpt(html string, maxRunes int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Wrap(err, "fail to parse html for excerpt")
	}

	words := []string{}
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				words = append(words, strings.Fields(child.Text())...)
				return
			}
			walk(child)
		})
	}
	walk(doc.Find("body"))

	text := []rune(strings.Join(words, " "))
	if maxRunes <= 0 || len(text) <= maxRunes {
		return string(text), nil
	}
	return strings.TrimSpace(string(text[:maxRunes])) + "...", nil
}
