package model

// Summary is the dashboard aggregate over a set of leads.
type Summary struct {
	Count           int            `json:"count" yaml:"count"`
	TotalValue      float64        `json:"total_value" yaml:"total_value"`
	MeanScore       float64        `json:"mean_score" yaml:"mean_score"`
	StatusHistogram map[string]int `json:"status_histogram" yaml:"status_histogram"`
}

// Summarize computes count, value total, mean score and a per-status
// histogram. Unknown statuses get their own bucket.
func Summarize(records []LeadRecord) Summary {
	s := Summary{StatusHistogram: make(map[string]int)}
	var scoreSum float64
	for _, r := range records {
		s.Count++
		s.TotalValue += r.Value
		scoreSum += r.Score
		s.StatusHistogram[string(r.Status)]++
	}
	if s.Count > 0 {
		s.MeanScore = scoreSum / float64(s.Count)
	}
	return s
}
