// Package textnorm canonicalizes labels and turns node text into token sets.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	separators = strings.NewReplacer("_", " ", "-", " ")
	tokenRe    = regexp.MustCompile(`[a-z0-9]+`)
)

// NormalizeText trims s, turns '_' and '-' into spaces and collapses whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(separators.Replace(s)), " ")
}

// Key is the case-insensitive comparison form of a label or type.
func Key(s string) string {
	return strings.ToLower(NormalizeText(s))
}

// Words splits the comparison form of s into its distinct words.
func Words(s string) []string {
	return dedupe(strings.Fields(Key(s)))
}

// DefaultStopWords returns the English stop words dropped by the tokenizer.
func DefaultStopWords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "can",
		"do", "for", "from", "has", "have", "if", "in", "into", "is", "it",
		"its", "me", "my", "of", "on", "or", "our", "so", "that", "the",
		"their", "then", "there", "this", "to", "was", "we", "will", "with", "you",
		"your",
	}
}

// Tokenizer extracts scoring tokens from node text.
type Tokenizer struct {
	stop map[string]struct{}
}

func NewTokenizer(stopWords []string) *Tokenizer {
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Tokenizer{stop: stop}
}

// Tokens returns the distinct tokens of label and content in first-seen order.
// Runs shorter than two characters and stop words are dropped.
func (t *Tokenizer) Tokens(label, content string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(label+" "+content), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < 2 {
			continue
		}
		if _, ok := t.stop[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
