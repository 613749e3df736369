// Package langdetect picks the LSP languageId for a C-family source file.
// It uses go-enry to classify by extension, modeline and content, and falls
// back to C++ because clangd parses the C subset it accepts either way.
package langdetect

import (
	"bytes"

	"github.com/go-enry/go-enry/v2"
)

// Language identifiers sent in textDocument/didOpen.
const (
	LangC          = "c"
	LangCPP        = "cpp"
	LangObjectiveC = "objective-c"
)

// enry language names.
const (
	enryC          = "C"
	enryCPP        = "C++"
	enryObjectiveC = "Objective-C"
)

//nolint:gochecknoglobals // read-only candidate list
var candidates = []string{enryC, enryCPP, enryObjectiveC}

// cppMarkers are tokens that only appear in C++ sources.
//
//nolint:gochecknoglobals // read-only pattern list
var cppMarkers = [][]byte{
	[]byte("namespace "),
	[]byte("template<"),
	[]byte("template <"),
	[]byte("class "),
	[]byte("public:"),
	[]byte("private:"),
	[]byte("std::"),
	[]byte("nullptr"),
	[]byte("#include <iostream>"),
}

// LanguageID returns the languageId for a file.
func LanguageID(path string, content []byte) string {
	// Strategy 1: an explicit modeline wins.
	if lang, safe := enry.GetLanguageByModeline(content); safe {
		if id, ok := normalize(lang); ok {
			return id
		}
	}

	// Strategy 2: an unambiguous extension.
	langs := cFamily(enry.GetLanguagesByExtension(path, content, nil))
	if len(langs) == 1 {
		id, _ := normalize(langs[0])
		return id
	}

	// Strategy 3: headers and unknown extensions are decided by content.
	if hasCPPMarkers(content) {
		return LangCPP
	}
	if len(bytes.TrimSpace(content)) > 0 {
		pool := langs
		if len(pool) == 0 {
			pool = candidates
		}
		// The classifier ranks every candidate, so the first is the best
		// guess even when it is not reported as safe.
		if lang, _ := enry.GetLanguageByClassifier(content, pool); lang != "" {
			if id, ok := normalize(lang); ok {
				return id
			}
		}
	}

	return LangCPP
}

// IsCFamily reports whether the file looks like C, C++ or Objective-C by
// name alone.
func IsCFamily(path string) bool {
	return len(cFamily(enry.GetLanguagesByExtension(path, nil, nil))) > 0
}

// IsVendored reports whether path is third-party code that hosts usually
// leave alone.
func IsVendored(path string) bool {
	return enry.IsVendor(path)
}

func cFamily(langs []string) []string {
	var out []string
	for _, lang := range langs {
		if _, ok := normalize(lang); ok {
			out = append(out, lang)
		}
	}
	return out
}

func hasCPPMarkers(content []byte) bool {
	for _, marker := range cppMarkers {
		if bytes.Contains(content, marker) {
			return true
		}
	}
	return false
}

// normalize converts a go-enry language name to a languageId.
func normalize(lang string) (string, bool) {
	switch lang {
	case enryC:
		return LangC, true
	case enryCPP:
		return LangCPP, true
	case enryObjectiveC:
		return LangObjectiveC, true
	default:
		return "", false
	}
}
