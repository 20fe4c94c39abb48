package cms

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

// Titles are mostly Turkish; the tr substitutions map İ/ı before transliteration.
const slugLang = "tr"

var htmlTags = regexp.MustCompile(`<[^>]*>`)

// Slugify turns a title into a lowercase, dash separated URL segment.
// It returns "" when nothing in the title survives transliteration.
func Slugify(title string) string {
	return slug.MakeLang(strings.TrimSpace(title), slugLang)
}

// Excerpt strips tags and cuts content to at most length runes on a word boundary.
func Excerpt(content string, length int) string {
	plain := []rune(htmlTags.ReplaceAllString(content, ""))
	if len(plain) <= length {
		return string(plain)
	}
	cut := string(plain[:length])
	if i := strings.LastIndex(cut, " "); i > 0 {
		return cut[:i] + "..."
	}
	return cut + "..."
}
