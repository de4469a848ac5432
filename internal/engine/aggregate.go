package engine

import (
	"math"
	"sort"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// TopRecommendationCount is the number of recommendations kept in the summary.
const TopRecommendationCount = 5

// Aggregate folds rule results into an AnalysisResult: it sums scores and
// caps, concatenates issues and recommendations in rule order, tallies
// severities and types, and keeps the highest-priority recommendations.
func Aggregate(results []model.RuleResult) *model.AnalysisResult {
	out := &model.AnalysisResult{
		Issues:          []model.Issue{},
		Recommendations: []model.Recommendation{},
		RuleResults:     results,
	}
	if out.RuleResults == nil {
		out.RuleResults = []model.RuleResult{}
	}

	for _, r := range results {
		out.Score += r.Score
		out.MaxScore += r.MaxScore
		out.Issues = append(out.Issues, r.Issues...)
		out.Recommendations = append(out.Recommendations, r.Recommendations...)
	}

	out.ScorePercentage = Percentage(out.Score, out.MaxScore)
	out.Summary = summarize(out.Issues, out.Recommendations)
	return out
}

// Percentage returns round(100*score/maxScore), or 0 when maxScore is 0.
func Percentage(score, maxScore int) int {
	if maxScore == 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(maxScore)))
}

func summarize(issues []model.Issue, recs []model.Recommendation) model.Summary {
	s := model.Summary{
		TotalIssues:    len(issues),
		SeverityCounts: make(map[string]int, len(model.Severities)),
		TypeCounts:     make(map[string]int),
	}
	for _, sev := range model.Severities {
		s.SeverityCounts[sev.String()] = 0
	}
	for _, issue := range issues {
		s.SeverityCounts[issue.Severity.String()]++
		s.TypeCounts[issue.Type]++
	}
	s.TopRecommendations = TopRecommendations(recs, TopRecommendationCount)
	return s
}

// TopRecommendations returns up to n recommendations ordered by descending
// priority. Equal priorities keep their original order. recs is not modified.
func TopRecommendations(recs []model.Recommendation, n int) []model.Recommendation {
	sorted := make([]model.Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
