package extract

import (
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/sells-group/leadcrm/internal/model"
)

// fieldAliases maps lowercased response keys onto record fields. Keys named
// like an id are deliberately absent.
var fieldAliases = map[string]string{
	"name":      "name",
	"nome":      "name",
	"company":   "company",
	"empresa":   "company",
	"status":    "status",
	"summary":   "summary",
	"historico": "summary",
	"histórico": "summary",
	"history":   "summary",
	"score":     "score",
	"value":     "value",
	"valor":     "value",
}

// ParseLead decodes one JSON object into a record with defaults applied.
// Anything that is not a single object yields a MalformedResponse error.
func ParseLead(text string) (model.LeadRecord, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return model.LeadRecord{}, &ExtractionError{Kind: KindMalformedResponse, Raw: text, Err: err}
	}

	// Per field the lowest keyRank wins; ties go to the first key in sorted order.
	fields := make(map[string]any, len(obj))
	ranks := make(map[string]int, len(obj))
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		norm := strings.ToLower(strings.TrimSpace(k))
		f, ok := fieldAliases[norm]
		if !ok {
			continue
		}
		r := keyRank(k, norm, f)
		if prev, seen := ranks[f]; seen && prev <= r {
			continue
		}
		fields[f], ranks[f] = obj[k], r
	}

	rec := model.NewLeadRecord()
	rec.Name = toString(fields["name"])
	rec.Company = toString(fields["company"])
	rec.Status = model.NormalizeStatus(toString(fields["status"]))
	rec.Summary = toString(fields["summary"])
	rec.Score = toFloat64(fields["score"])
	rec.Value = toFloat64(fields["value"])
	return rec, nil
}

// keyRank orders the keys that map onto field f: the exact field name, then
// a case or whitespace variant of it, then any alias.
func keyRank(key, norm, f string) int {
	switch {
	case key == f:
		return 0
	case norm == f:
		return 1
	default:
		return 2
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// toFloat64 converts numbers and numeric strings; anything else is 0.
func toFloat64(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
