package models

import "strings"

// Supported content languages. The first entry is the site default.
var Languages = []string{"en", "de"}

// Localized holds one string per language code.
type Localized map[string]string

// Get returns the text for lang, falling back to the other languages in
// Languages order when that translation is missing.
func (l Localized) Get(lang string) string {
	if s := strings.TrimSpace(l[lang]); s != "" {
		return s
	}
	for _, fallback := range Languages {
		if s := strings.TrimSpace(l[fallback]); s != "" {
			return s
		}
	}
	return ""
}
