package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	cases := map[string]string{
		"  Verify   Identity ":   "Verify Identity",
		"collect_account-number": "collect account number",
		"a__b--c":                "a b c",
		"\tline\nbreak":          "line break",
		"":                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeText(in), "input %q", in)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("Verify_Identity"), Key("  verify identity"))
	assert.Equal(t, "system prompt", Key("System-Prompt"))
}

func TestTokens(t *testing.T) {
	tok := NewTokenizer(DefaultStopWords())

	got := tok.Tokens("Verify Identity", "ask for the account number, account #2")
	assert.Equal(t, []string{"verify", "identity", "ask", "account", "number"}, got)
}

func TestTokens_DropsShortRunsAndStopWords(t *testing.T) {
	tok := NewTokenizer([]string{"hello"})

	got := tok.Tokens("Hello a b cd", "x9 y")
	assert.Equal(t, []string{"cd", "x9"}, got)
}

func TestTokens_Empty(t *testing.T) {
	tok := NewTokenizer(DefaultStopWords())
	assert.Empty(t, tok.Tokens("", ""))
	assert.Empty(t, tok.Tokens("the", "of a"))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"verify", "caller", "identity"}, Words("Verify caller_identity verify"))
}
