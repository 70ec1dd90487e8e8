package services

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Prefill provenance labels recorded in the manifest.
const (
	provenanceFilename = "filename"
	provenanceContent  = "content"
)

// yearPattern matches a plausible publication year.
var yearPattern = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\b`)

// stopwords per language for the detection heuristic. Counting common
// function words is crude but works well on anything longer than a
// paragraph, and costs nothing compared to a real classifier.
var stopwords = map[string][]string{
	"en": {"the", "and", "of", "to", "in", "is", "that", "for", "with", "was"},
	"de": {"der", "die", "das", "und", "ist", "nicht", "ein", "eine", "mit", "für"},
	"nl": {"de", "het", "een", "en", "van", "dat", "niet", "met", "voor", "zijn"},
}

// inferTitle derives a display title from the upload filename.
func inferTitle(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

// inferYear finds a plausible publication year in the filename.
func inferYear(filename string) string {
	return yearPattern.FindString(filename)
}

// detectLanguage guesses the document language from its text by
// counting stopword hits per language. Returns the ISO 639-1 code of
// the best scorer, or empty when nothing scored or the input is not
// valid UTF-8 text.
func detectLanguage(text string) string {
	if text == "" || !utf8.ValidString(text) {
		return ""
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return ""
	}

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[strings.Trim(w, ".,;:!?()\"'")]++
	}

	best := ""
	bestScore := 0
	for lang, markers := range stopwords {
		score := 0
		for _, marker := range markers {
			score += counts[marker]
		}
		if score > bestScore {
			best = lang
			bestScore = score
		}
	}

	// A couple of accidental hits on a short text is not a signal.
	if bestScore < 3 {
		return ""
	}
	return best
}
