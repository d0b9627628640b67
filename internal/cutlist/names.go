package cutlist

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SanitizeName reduces a cutlist output name to a safe single path component.
// The name is NFC-normalized, path separators and control runes become
// underscores, and leading dots are dropped so names cannot nest or hide
// files. An empty result means the name was unusable.
func SanitizeName(name string) string {
	normalized := norm.NFC.String(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		switch {
		case r == '/' || r == '\\' || r == filepath.Separator:
			b.WriteRune('_')
		case unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	cleaned := strings.TrimSpace(b.String())
	cleaned = strings.TrimLeft(cleaned, ".")
	return cleaned
}

// DeriveTitle produces a human-friendly job title from an input file path.
func DeriveTitle(sourcePath string) string {
	if sourcePath == "" {
		return "Unknown Input"
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Unknown Input"
	}
	return cases.Title(language.Und).String(title)
}
