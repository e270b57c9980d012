package model

import (
	"strings"
	"time"
)

const (
	defaultLastScore = 50.0
	trendCarry       = 0.7
	trendWeight      = 0.3
)

// Analytics aggregates every quiz a user has submitted. Version guards
// concurrent read-modify-write cycles.
type Analytics struct {
	UserID           string                   `json:"user_id" bson:"_id"`
	TotalQuizzes     int                      `json:"total_quizzes" bson:"total_quizzes"`
	AverageScore     float64                  `json:"average_score" bson:"average_score"`
	TotalCorrect     int                      `json:"total_correct" bson:"total_correct"`
	TotalIncorrect   int                      `json:"total_incorrect" bson:"total_incorrect"`
	TotalTimeSpent   float64                  `json:"total_time_spent" bson:"total_time_spent"`
	Programs         map[string]*ProgramStats `json:"programs" bson:"programs"`
	WeaknessPatterns map[string][]string      `json:"weakness_patterns" bson:"weakness_patterns"`
	ImprovementTrend float64                  `json:"improvement_trend" bson:"improvement_trend"`
	LastScore        *float64                 `json:"last_score,omitempty" bson:"last_score,omitempty"`
	LastUpdated      time.Time                `json:"last_updated" bson:"last_updated"`
	Version          int64                    `json:"-" bson:"version"`
}

// ProgramStats is the per-program breakdown.
type ProgramStats struct {
	QuizCount      int                     `json:"quiz_count" bson:"quiz_count"`
	AverageScore   float64                 `json:"average_score" bson:"average_score"`
	TotalCorrect   int                     `json:"total_correct" bson:"total_correct"`
	TotalQuestions int                     `json:"total_questions" bson:"total_questions"`
	Courses        map[string]*CourseStats `json:"courses" bson:"courses"`
}

// CourseStats is the per-course breakdown within a program.
type CourseStats struct {
	QuizCount      int      `json:"quiz_count" bson:"quiz_count"`
	AverageScore   float64  `json:"average_score" bson:"average_score"`
	TotalCorrect   int      `json:"total_correct" bson:"total_correct"`
	TotalQuestions int      `json:"total_questions" bson:"total_questions"`
	WeakTopics     []string `json:"weak_topics" bson:"weak_topics"`
	StrongTopics   []string `json:"strong_topics" bson:"strong_topics"`
}

func NewAnalytics(uid string) *Analytics {
	return &Analytics{
		UserID:           uid,
		Programs:         map[string]*ProgramStats{},
		WeaknessPatterns: map[string][]string{},
	}
}

// PatternKey names the weakness pattern of a program and course.
func PatternKey(program, course string) string {
	return program + "_" + course
}

// SplitPatternKey reverses PatternKey at the first underscore.
func SplitPatternKey(key string) (program, course string, ok bool) {
	program, course, ok = strings.Cut(key, "_")
	return program, course, ok && program != "" && course != ""
}

// Record folds a submitted quiz into the aggregates. weaknessLimit caps how
// many incorrect question ids a pattern keeps.
func (a *Analytics) Record(r *QuizResult, weaknessLimit int) {
	if a.Programs == nil {
		a.Programs = map[string]*ProgramStats{}
	}
	if a.WeaknessPatterns == nil {
		a.WeaknessPatterns = map[string][]string{}
	}

	a.TotalQuizzes++
	a.TotalCorrect += r.CorrectAnswers
	a.TotalIncorrect += r.IncorrectAnswers
	a.TotalTimeSpent += r.TimeTaken
	a.AverageScore = runningAverage(a.AverageScore, r.Score, a.TotalQuizzes)

	prog, ok := a.Programs[r.Program]
	if !ok {
		prog = &ProgramStats{Courses: map[string]*CourseStats{}}
		a.Programs[r.Program] = prog
	}
	if prog.Courses == nil {
		prog.Courses = map[string]*CourseStats{}
	}
	prog.QuizCount++
	prog.TotalCorrect += r.CorrectAnswers
	prog.TotalQuestions += r.TotalQuestions
	prog.AverageScore = runningAverage(prog.AverageScore, r.Score, prog.QuizCount)

	course, ok := prog.Courses[r.Course]
	if !ok {
		course = &CourseStats{WeakTopics: []string{}, StrongTopics: []string{}}
		prog.Courses[r.Course] = course
	}
	course.QuizCount++
	course.TotalCorrect += r.CorrectAnswers
	course.TotalQuestions += r.TotalQuestions
	course.AverageScore = runningAverage(course.AverageScore, r.Score, course.QuizCount)

	if len(r.IncorrectQuestions) > 0 {
		key := PatternKey(r.Program, r.Course)
		merged := appendUnique(a.WeaknessPatterns[key], r.IncorrectQuestions)
		if weaknessLimit > 0 && len(merged) > weaknessLimit {
			merged = merged[len(merged)-weaknessLimit:]
		}
		a.WeaknessPatterns[key] = merged
	}

	if a.TotalQuizzes > 1 {
		last := defaultLastScore
		if a.LastScore != nil {
			last = *a.LastScore
		}
		a.ImprovementTrend = a.ImprovementTrend*trendCarry + (r.Score-last)*trendWeight
	}
	score := r.Score
	a.LastScore = &score
	a.LastUpdated = r.Timestamp
}

func runningAverage(avg, value float64, count int) float64 {
	return (avg*float64(count-1) + value) / float64(count)
}

// appendUnique appends ids not yet present, keeping first-seen order.
func appendUnique(existing, ids []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(ids))
	out := make([]string, 0, len(existing)+len(ids))
	for _, list := range [][]string{existing, ids} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// AreaScore is a course listed as a strength or weakness.
type AreaScore struct {
	Program string  `json:"program"`
	Course  string  `json:"course"`
	Score   float64 `json:"score"`
	Quizzes int     `json:"quizzes"`
}

// Recommendation is one study tip on the analytics page.
type Recommendation struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// Trend summarises how recent scores compare with older ones.
type Trend struct {
	Trend   string  `json:"trend"`
	Change  float64 `json:"change"`
	Message string  `json:"message"`
}

// OverallStats is the headline block of the analytics report.
type OverallStats struct {
	TotalQuizzes     int     `json:"total_quizzes"`
	AverageScore     float64 `json:"average_score"`
	TotalCorrect     int     `json:"total_correct"`
	TotalIncorrect   int     `json:"total_incorrect"`
	Accuracy         float64 `json:"accuracy"`
	TotalTimeSpent   float64 `json:"total_time_spent"`
	ImprovementTrend float64 `json:"improvement_trend"`
}

// AnalyticsReport is what the analytics page renders. Reports without data
// carry only HasData and Message.
type AnalyticsReport struct {
	HasData          bool                     `json:"has_data"`
	Message          string                   `json:"message,omitempty"`
	OverallStats     *OverallStats            `json:"overall_stats"`
	ProgramBreakdown map[string]*ProgramStats `json:"program_breakdown"`
	StrengthAreas    []AreaScore              `json:"strength_areas"`
	WeaknessAreas    []AreaScore              `json:"weakness_areas"`
	RecentQuizzes    []*QuizResult            `json:"recent_quizzes"`
	Recommendations  []Recommendation         `json:"recommendations"`
	PerformanceTrend *Trend                   `json:"performance_trend"`
}
