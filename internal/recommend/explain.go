package recommend

import (
	"strings"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/textanalysis"
)

var categoryLabels = map[string]string{
	"technology": "tecnología",
	"clothing":   "ropa",
	"home":       "hogar",
	"sports":     "deportes",
	"food":       "comida",
	"books":      "libros",
	"toys":       "juguetes",
	"beauty":     "belleza",
}

var intentLabels = map[textanalysis.Intent]string{
	textanalysis.IntentBuy:     "comprar",
	textanalysis.IntentCompare: "comparar",
	textanalysis.IntentBrowse:  "explorar",
	textanalysis.IntentPrice:   "consultar precios",
	textanalysis.IntentInfo:    "obtener información",
}

// maxExplainedInterests caps how many interest categories Explain names.
const maxExplainedInterests = 3

func categoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

func labels(categories []string) string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = categoryLabel(c)
	}
	return strings.Join(out, ", ")
}

// Explain describes, in Spanish, what was understood from the query and
// which interests shaped the ranking. It is for display only.
func Explain(a textanalysis.Analysis, interests []behavior.CategoryScore) string {
	var parts []string

	if len(a.Categories) > 0 {
		parts = append(parts, "Buscás productos de "+labels(a.Categories)+".")
	}

	intent, ok := intentLabels[a.Intent]
	if !ok {
		intent = string(a.Intent)
	}
	parts = append(parts, "Tu intención parece ser "+intent+".")

	if len(interests) > 0 {
		n := min(len(interests), maxExplainedInterests)
		top := make([]string, 0, n)
		for _, in := range interests[:n] {
			top = append(top, in.Category)
		}
		parts = append(parts, "Según tu historial te interesa "+labels(top)+".")
	}

	return strings.Join(parts, " ")
}
