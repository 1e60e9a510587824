package textanalysis

import "strings"

// keyword is a compiled trigger. A trailing '*' in the source form makes
// the last word a stem that matches any word starting with it.
type keyword struct {
	words []string
	stem  bool
}

func compile(src ...string) []keyword {
	out := make([]keyword, 0, len(src))
	for _, s := range src {
		kw := keyword{}
		if strings.HasSuffix(s, "*") {
			kw.stem = true
			s = strings.TrimSuffix(s, "*")
		}
		kw.words = strings.Fields(s)
		if len(kw.words) > 0 {
			out = append(out, kw)
		}
	}
	return out
}

// matchAt reports whether kw matches tokens starting at position i.
func (kw keyword) matchAt(tokens []string, i int) bool {
	if i+len(kw.words) > len(tokens) {
		return false
	}
	last := len(kw.words) - 1
	for j, w := range kw.words {
		tok := tokens[i+j]
		if j == last && kw.stem {
			if !strings.HasPrefix(tok, w) {
				return false
			}
			continue
		}
		if tok != w {
			return false
		}
	}
	return true
}

// count returns how many times kw occurs in tokens.
func (kw keyword) count(tokens []string) int {
	n := 0
	for i := range tokens {
		if kw.matchAt(tokens, i) {
			n++
		}
	}
	return n
}

// anyMatch reports whether at least one keyword occurs in tokens.
func anyMatch(tokens []string, kws []keyword) bool {
	for _, kw := range kws {
		for i := range tokens {
			if kw.matchAt(tokens, i) {
				return true
			}
		}
	}
	return false
}

// countMatches sums occurrences of every keyword in tokens.
func countMatches(tokens []string, kws []keyword) int {
	n := 0
	for _, kw := range kws {
		n += kw.count(tokens)
	}
	return n
}
