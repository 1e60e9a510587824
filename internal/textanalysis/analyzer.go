/*
Package textanalysis turns a free-text Spanish shopping query into a
structured Analysis: product categories, purchase intent, sentiment, urgency,
an optional price range and the preferred sale type.

Analysis is pure and deterministic. Input is normalized first (lowercase,
diacritics removed), so "teléfono" and "telefono" behave the same.
*/
package textanalysis

import "strings"

// Intent is the detected purpose of a query.
type Intent string

const (
	IntentBuy     Intent = "buy"
	IntentCompare Intent = "compare"
	IntentBrowse  Intent = "browse"
	IntentPrice   Intent = "price"
	IntentInfo    Intent = "info"
)

// Sentiment is the overall tone of a query.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// SaleType is the fulfilment mode a query asks for. The zero value means none.
type SaleType string

const (
	SaleTypeNone     SaleType = ""
	SaleTypeDirecta  SaleType = "directa"
	SaleTypePedido   SaleType = "pedido"
	SaleTypeDelivery SaleType = "delivery"
)

// PriceRange bounds a price. Either side may be nil; when both are set Min <= Max.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Analysis is the structured reading of one query.
type Analysis struct {
	Categories []string    `json:"categories"`
	Intent     Intent      `json:"intent"`
	Sentiment  Sentiment   `json:"sentiment"`
	Urgency    float64     `json:"urgency"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	SaleType   SaleType    `json:"saleType,omitempty"`
}

// HasSignal reports whether the query produced anything beyond the defaults.
func (a Analysis) HasSignal() bool {
	return len(a.Categories) > 0 ||
		a.Intent != IntentBrowse ||
		a.Sentiment != SentimentNeutral ||
		a.Urgency != DefaultUrgency ||
		a.PriceRange != nil ||
		a.SaleType != SaleTypeNone
}

// Empty returns the analysis reported for blank input.
func Empty() Analysis {
	return Analysis{
		Categories: []string{},
		Intent:     IntentBrowse,
		Sentiment:  SentimentNeutral,
		Urgency:    DefaultUrgency,
	}
}

// Analyze extracts every signal from text.
func Analyze(text string) Analysis {
	normalized := Normalize(text)
	if normalized == "" {
		return Empty()
	}
	tokens := words(normalized)

	return Analysis{
		Categories: Categories(normalized),
		Intent:     detectIntent(tokens),
		Sentiment:  detectSentiment(tokens),
		Urgency:    detectUrgency(tokens),
		PriceRange: ParsePriceRange(normalized),
		SaleType:   detectSaleType(tokens),
	}
}

// Categories returns every category with a keyword inside text, in table
// order. Text need not be normalized.
func Categories(text string) []string {
	normalized := Normalize(text)
	out := []string{}
	if normalized == "" {
		return out
	}
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(normalized, kw) {
				out = append(out, c.name)
				break
			}
		}
	}
	return out
}

func detectIntent(tokens []string) Intent {
	for _, in := range intentKeywords {
		if anyMatch(tokens, in.keywords) {
			return in.intent
		}
	}
	return IntentBrowse
}

func detectSentiment(tokens []string) Sentiment {
	pos := countMatches(tokens, positiveKeywords)
	neg := countMatches(tokens, negativeKeywords)
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func detectUrgency(tokens []string) float64 {
	for _, tier := range urgencyTiers {
		if anyMatch(tokens, tier.keywords) {
			return tier.score
		}
	}
	return DefaultUrgency
}

func detectSaleType(tokens []string) SaleType {
	for _, st := range saleTypeKeywords {
		if anyMatch(tokens, st.keywords) {
			return st.saleType
		}
	}
	return SaleTypeNone
}
