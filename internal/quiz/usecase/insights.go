package usecase

import (
	"fmt"
	"math"
	"sort"

	"pass-questions/internal/quiz/domain/model"
)

const (
	strengthThreshold = 75.0
	weaknessThreshold = 60.0
	areaLimit         = 5
	trendWindow       = 5
	trendMargin       = 5.0
	maxRecommended    = 3
)

// StrengthsAndWeaknesses lists courses averaging at least 75 (best first)
// and below 60 (worst first), five of each at most.
func StrengthsAndWeaknesses(a *model.Analytics) (strengths, weaknesses []model.AreaScore) {
	strengths, weaknesses = []model.AreaScore{}, []model.AreaScore{}
	for program, prog := range a.Programs {
		if prog == nil {
			continue
		}
		for course, stats := range prog.Courses {
			if stats == nil {
				continue
			}
			area := model.AreaScore{Program: program, Course: course, Score: stats.AverageScore, Quizzes: stats.QuizCount}
			switch {
			case stats.AverageScore >= strengthThreshold:
				strengths = append(strengths, area)
			case stats.AverageScore < weaknessThreshold:
				weaknesses = append(weaknesses, area)
			}
		}
	}

	sort.SliceStable(strengths, func(i, j int) bool { return areaLess(strengths[j], strengths[i]) })
	sort.SliceStable(weaknesses, func(i, j int) bool { return areaLess(weaknesses[i], weaknesses[j]) })
	if len(strengths) > areaLimit {
		strengths = strengths[:areaLimit]
	}
	if len(weaknesses) > areaLimit {
		weaknesses = weaknesses[:areaLimit]
	}
	return strengths, weaknesses
}

// areaLess orders by score and breaks ties by name for stable output.
func areaLess(a, b model.AreaScore) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.Program != b.Program {
		return a.Program > b.Program
	}
	return a.Course > b.Course
}

// Recommendations returns at most three study tips.
func Recommendations(a *model.Analytics) []model.Recommendation {
	recs := make([]model.Recommendation, 0, maxRecommended)
	switch {
	case a.AverageScore >= 85:
		recs = append(recs, model.Recommendation{
			Type:     "challenge",
			Title:    "Master Level Challenge",
			Message:  "Try advanced difficulty questions to push your limits.",
			Priority: "medium",
		})
	case a.AverageScore >= 70:
		recs = append(recs, model.Recommendation{
			Type:     "practice",
			Title:    "Consistency Practice",
			Message:  "Focus on maintaining your current performance level.",
			Priority: "high",
		})
	default:
		recs = append(recs, model.Recommendation{
			Type:     "foundation",
			Title:    "Foundation Building",
			Message:  "Review fundamental concepts and retake basic quizzes.",
			Priority: "high",
		})
	}

	keys := make([]string, 0, len(a.WeaknessPatterns))
	for k := range a.WeaknessPatterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		if program, course, ok := model.SplitPatternKey(keys[0]); ok {
			recs = append(recs, model.Recommendation{
				Type:     "targeted",
				Title:    "Targeted Practice Needed",
				Message:  fmt.Sprintf("Focus on %s in %s based on your performance.", course, program),
				Priority: "high",
			})
		}
	}

	if a.TotalQuizzes < 3 {
		recs = append(recs, model.Recommendation{
			Type:     "consistency",
			Title:    "Build Study Habit",
			Message:  "Complete at least 3 quizzes to establish a learning routine.",
			Priority: "high",
		})
	}

	if len(recs) > maxRecommended {
		recs = recs[:maxRecommended]
	}
	return recs
}

// PerformanceTrend compares the three newest of the last five scores with
// older ones. recent must be ordered newest first.
func PerformanceTrend(recent []*model.QuizResult) *model.Trend {
	if len(recent) < 2 {
		return &model.Trend{Trend: "stable", Message: "Not enough data for trend analysis"}
	}

	n := len(recent)
	if n > trendWindow {
		n = trendWindow
	}
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		scores[i] = recent[i].Score
	}

	if len(scores) >= 3 {
		recentAvg := mean(scores[:3])
		olderAvg := scores[len(scores)-1]
		if len(scores) >= 6 {
			olderAvg = mean(scores[len(scores)-3:])
		}
		change := round(recentAvg-olderAvg, 1)
		switch {
		case recentAvg > olderAvg+trendMargin:
			return &model.Trend{
				Trend:   "improving",
				Change:  change,
				Message: fmt.Sprintf("Your scores have improved by %.1f%% recently!", change),
			}
		case recentAvg < olderAvg-trendMargin:
			return &model.Trend{
				Trend:   "declining",
				Change:  change,
				Message: fmt.Sprintf("Your scores have dropped by %.1f%%. Consider reviewing more.", math.Abs(change)),
			}
		}
	}

	return &model.Trend{Trend: "stable", Message: "Your performance is stable. Keep up the good work!"}
}
