package textanalysis

import (
	"regexp"
	"strconv"
	"strings"
)

// numberPattern is an amount with an optional scale word: "500", "1.500.000",
// "2,5 millones", "300 mil".
const numberPattern = `\b(\d[\d.,]*\d|\d)(?:\s*(millones|millon|mil)\b)?`

var (
	currencySymbolRe = regexp.MustCompile(`₲`)
	currencyWordRe   = regexp.MustCompile(`\b(?:guaranies|guarani|pyg|gs)\b\.?`)
	currencySuffixRe = regexp.MustCompile(`(\d)(?:gs|pyg)\b\.?`)

	numberRe       = regexp.MustCompile(numberPattern)
	betweenRangeRe = regexp.MustCompile(`\bentre\s+` + numberPattern + `\s+y\s+` + numberPattern)
	fromToRangeRe  = regexp.MustCompile(`\bde\s+` + numberPattern + `\s+a\s+` + numberPattern)
)

var scales = map[string]float64{
	"mil":      1e3,
	"millon":   1e6,
	"millones": 1e6,
}

// ParsePriceRange reads a price constraint out of text, returning nil when
// the text carries none. A single number only counts when a bound hint such
// as "hasta" or "desde" accompanies it.
func ParsePriceRange(text string) *PriceRange {
	normalized := stripCurrency(Normalize(text))
	if normalized == "" {
		return nil
	}

	for _, re := range []*regexp.Regexp{betweenRangeRe, fromToRangeRe} {
		m := re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		a, okA := amount(m[1], m[2])
		b, okB := amount(m[3], m[4])
		if okA && okB {
			return bounded(min(a, b), max(a, b))
		}
	}

	values := amounts(normalized)
	switch len(values) {
	case 0:
		return nil
	case 1:
		tokens := words(normalized)
		if anyMatch(tokens, upperBoundHints) {
			return &PriceRange{Max: &values[0]}
		}
		if anyMatch(tokens, lowerBoundHints) {
			return &PriceRange{Min: &values[0]}
		}
		return nil
	default:
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		return bounded(lo, hi)
	}
}

func bounded(lo, hi float64) *PriceRange {
	return &PriceRange{Min: &lo, Max: &hi}
}

func stripCurrency(s string) string {
	s = currencySymbolRe.ReplaceAllString(s, " ")
	s = currencySuffixRe.ReplaceAllString(s, "$1 ")
	s = currencyWordRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// amounts returns every parseable amount in text, in order of appearance.
func amounts(text string) []float64 {
	var out []float64
	for _, m := range numberRe.FindAllStringSubmatch(text, -1) {
		if v, ok := amount(m[1], m[2]); ok {
			out = append(out, v)
		}
	}
	return out
}

func amount(digits, scale string) (float64, bool) {
	v, ok := parseNumber(digits)
	if !ok {
		return 0, false
	}
	if f, found := scales[scale]; found {
		v *= f
	}
	return v, true
}

// parseNumber applies the local separator convention. With a comma present
// the comma is the decimal mark and dots group thousands. Without one, dots
// group thousands when every group after the first has three digits;
// otherwise the last dot is the decimal mark.
func parseNumber(s string) (float64, bool) {
	switch {
	case strings.Count(s, ",") == 1:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ",") > 1:
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, ".", "")
	case strings.Contains(s, "."):
		groups := strings.Split(s, ".")
		grouping := true
		for _, g := range groups[1:] {
			if len(g) != 3 {
				grouping = false
				break
			}
		}
		if grouping {
			s = strings.Join(groups, "")
		} else {
			last := len(groups) - 1
			s = strings.Join(groups[:last], "") + "." + groups[last]
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
