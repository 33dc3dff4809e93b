// Package lang maps file extensions and language tags to the closed
// model.Language set.
package lang

import (
	"strings"

	"github.com/kampus-dev/kampus/pkg/model"
)

// extensions maps a lowercase extension (without the leading dot) to its
// language. This is the total function from recognized extensions to tag
// required by the Language invariant; unrecognized extensions are simply
// absent from the map.
var extensions = map[string]model.Language{
	"py":  model.LangPython,
	"rs":  model.LangRust,
	"js":  model.LangJavaScript,
	"mjs": model.LangJavaScript,
	"cjs": model.LangJavaScript,
	"ts":  model.LangTypeScript,
	"tsx": model.LangTypeScript,
	"go":  model.LangGo,
	"cpp": model.LangCPP,
	"cc":  model.LangCPP,
	"cxx": model.LangCPP,
	"c++": model.LangCPP,
	"hpp": model.LangCPP,
	"hxx": model.LangCPP,
	"h":   model.LangCPP,
}

// aliases accepts both short and long forms of a language tag,
// case-insensitively, for ParseTag.
var aliases = map[string]model.Language{
	"python":     model.LangPython,
	"py":         model.LangPython,
	"rust":       model.LangRust,
	"rs":         model.LangRust,
	"javascript": model.LangJavaScript,
	"js":         model.LangJavaScript,
	"typescript": model.LangTypeScript,
	"ts":         model.LangTypeScript,
	"go":         model.LangGo,
	"golang":     model.LangGo,
	"cpp":        model.LangCPP,
	"c++":        model.LangCPP,
}

// Detect returns the Language for a file extension (with or without a
// leading dot), or false if the extension is not recognized.
func Detect(ext string) (model.Language, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	l, ok := extensions[ext]
	return l, ok
}

// DetectPath returns the Language for a file path, based on its extension.
func DetectPath(path string) (model.Language, bool) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || i == len(path)-1 {
		return "", false
	}
	return Detect(path[i+1:])
}

// Extensions returns the set of recognized extensions (without a leading
// dot) for a given language.
func Extensions(l model.Language) []string {
	var out []string
	for ext, lang := range extensions {
		if lang == l {
			out = append(out, ext)
		}
	}
	return out
}

// ParseTag parses a language tag in either short or long form,
// case-insensitively.
func ParseTag(s string) (model.Language, bool) {
	l, ok := aliases[strings.ToLower(s)]
	return l, ok
}
