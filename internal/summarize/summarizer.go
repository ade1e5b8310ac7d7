package summarize

import (
	"strings"
	"unicode"
)

const (
	maxSummarySentences = 5
	maxSummaryWords     = 120
)

// Summarize produces a short extractive summary: the leading sentences of the
// document, capped by sentence and word count. Deterministic for a given input.
func Summarize(text string) string {
	text = collapseWhitespace(text)
	if text == "" {
		return "No readable text found in this document."
	}

	sentences := splitSentences(text)
	var (
		out   []string
		words int
	)
	for _, sentence := range sentences {
		n := len(strings.Fields(sentence))
		if len(out) > 0 && (len(out) >= maxSummarySentences || words+n > maxSummaryWords) {
			break
		}
		out = append(out, sentence)
		words += n
		if len(out) >= maxSummarySentences || words >= maxSummaryWords {
			break
		}
	}

	summary := strings.Join(out, " ")
	return truncateWords(summary, maxSummaryWords)
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Only break when followed by whitespace or end of text, so
		// abbreviations mid-token stay intact.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func truncateWords(text string, limit int) string {
	fields := strings.Fields(text)
	if len(fields) <= limit {
		return text
	}
	return strings.Join(fields[:limit], " ") + "..."
}
