package history

import "github.com/SHINOYP/KYC/types"

// Stats is an aggregate view over a set of attempt reports.
// Produced by Aggregate; safe to read concurrently after creation.
type Stats struct {
	// Attempt lifecycle
	Total     int64
	Completed int64
	Failed    int64

	// SuccessRate is Completed/Total as a percentage (0 when Total is 0).
	SuccessRate float64

	// Result quality, over completed attempts only
	AvgTrustScore float64
	AvgDurationMs int64
	FraudFlagged  int64
	ByRiskLevel   map[string]int64
	ByStatus      map[string]int64
}

// Aggregate folds reports into a Stats summary. Risk and status
// breakdowns count completed attempts; failed attempts carry no result
// to classify.
func Aggregate(reports []*types.Report) Stats {
	stats := Stats{
		ByRiskLevel: make(map[string]int64),
		ByStatus:    make(map[string]int64),
	}

	var trustSum int64
	var durationSum int64
	for _, report := range reports {
		if report == nil {
			continue
		}
		stats.Total++
		durationSum += report.DurationMs

		if report.Outcome != types.OutcomeCompleted {
			stats.Failed++
			continue
		}
		stats.Completed++

		if r := report.Result; r != nil {
			trustSum += int64(r.TrustScore)
			stats.ByRiskLevel[r.FraudFlags.RiskLevel]++
			stats.ByStatus[r.Status]++
			if r.FraudFlags.HasFraudIndicators {
				stats.FraudFlagged++
			}
		}
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(stats.Total) * 100
		stats.AvgDurationMs = durationSum / stats.Total
	}
	if stats.Completed > 0 {
		stats.AvgTrustScore = float64(trustSum) / float64(stats.Completed)
	}
	return stats
}
