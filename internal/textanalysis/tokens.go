package textanalysis

import "unicode/utf8"

// stopwords are dropped from query keywords. Besides function words the
// list holds the request verbs shoppers open queries with.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "al", "algo", "algun", "alguna", "algunas", "algunos", "ante", "antes", "bajo",
		"como", "con", "contra", "cual", "cuando", "de", "del", "desde", "donde", "durante",
		"e", "el", "ella", "ellos", "en", "entre", "era", "es", "esa", "ese", "eso", "esta",
		"estas", "este", "esto", "estos", "hasta", "hay", "la", "las", "le", "les", "lo",
		"los", "mas", "me", "mi", "mis", "mucho", "muy", "nada", "ni", "no", "nos", "o",
		"otra", "otro", "para", "pero", "poco", "por", "porque", "que", "quien", "se", "ser",
		"si", "sin", "sobre", "su", "sus", "tambien", "tan", "te", "tu", "un", "una", "unas",
		"uno", "unos", "y", "ya", "yo",
		"busco", "buscar", "necesito", "quiero", "quisiera", "tengo", "tiene", "tienen",
		"hola", "favor", "gracias",
	} {
		stopwords[w] = struct{}{}
	}
}

// Keywords tokenizes a query for matching against product text: normalized
// words of at least three runes, stopwords removed, first occurrence kept.
func Keywords(text string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, w := range words(Normalize(text)) {
		if utf8.RuneCountInString(w) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
