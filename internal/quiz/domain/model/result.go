package model

import "time"

// DateLayout is the day format stored on history records.
const DateLayout = "2006-01-02"

// QuizResult is one finished quiz in quiz_history.
type QuizResult struct {
	ID                 string    `json:"id" bson:"_id"`
	UserID             string    `json:"user_id" bson:"user_id"`
	Username           string    `json:"username" bson:"username"`
	Program            string    `json:"program" bson:"program"`
	Course             string    `json:"course" bson:"course"`
	Level              string    `json:"level" bson:"level"`
	Semester           string    `json:"semester" bson:"semester"`
	Score              float64   `json:"score" bson:"score"`
	TotalQuestions     int       `json:"total_questions" bson:"total_questions"`
	CorrectAnswers     int       `json:"correct_answers" bson:"correct_answers"`
	IncorrectAnswers   int       `json:"incorrect_answers" bson:"incorrect_answers"`
	Accuracy           float64   `json:"accuracy" bson:"accuracy"`
	TimeTaken          float64   `json:"time_taken" bson:"time_taken"`
	TimePerQuestion    float64   `json:"time_per_question" bson:"time_per_question"`
	IncorrectQuestions []string  `json:"incorrect_questions" bson:"incorrect_questions"`
	CorrectQuestions   []string  `json:"correct_questions" bson:"correct_questions"`
	Difficulty         string    `json:"difficulty" bson:"difficulty"`
	Timestamp          time.Time `json:"timestamp" bson:"timestamp"`
	Date               string    `json:"date" bson:"date"`
	StrengthAreas      []string  `json:"strength_areas" bson:"strength_areas"`
	WeaknessAreas      []string  `json:"weakness_areas" bson:"weakness_areas"`
	Recommendations    []string  `json:"recommendations" bson:"recommendations"`
}

// Progress is chart data for the analytics page.
type Progress struct {
	Labels        []string  `json:"labels"`
	AverageScores []float64 `json:"average_scores"`
	QuizCounts    []int     `json:"quiz_counts"`
	TimeRange     string    `json:"time_range"`
	Note          string    `json:"note,omitempty"`
}

// SampleProgress is shown until the user has finished a quiz in range.
func SampleProgress(timeRange string) *Progress {
	return &Progress{
		Labels:        []string{"Week 1", "Week 2", "Week 3", "Week 4"},
		AverageScores: []float64{65, 72, 78, 82},
		QuizCounts:    []int{3, 4, 5, 6},
		TimeRange:     timeRange,
		Note:          "Using sample data - complete quizzes to see your progress!",
	}
}

// ScoreDistribution buckets scores for the distribution chart.
type ScoreDistribution struct {
	Distribution map[string]int `json:"distribution"`
	Note         string         `json:"note,omitempty"`
}

func DefaultScoreDistribution() *ScoreDistribution {
	return &ScoreDistribution{
		Distribution: map[string]int{
			"Excellent (90-100%)":      25,
			"Good (75-89%)":            40,
			"Average (60-74%)":         25,
			"Needs Improvement (<60%)": 10,
		},
		Note: "Complete quizzes to see your actual score distribution",
	}
}
