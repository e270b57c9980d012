package model

import "time"

// OptionCount is the number of choices every question carries.
const OptionCount = 4

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	SourceAIGenerated = "ai_generated"
)

// Question is one multiple-choice entry of the question bank.
type Question struct {
	ID            string    `json:"id" bson:"_id"`
	Program       string    `json:"program" bson:"program"`
	Course        string    `json:"course" bson:"course"`
	Level         string    `json:"level" bson:"level"`
	Semester      string    `json:"semester" bson:"semester"`
	Question      string    `json:"question" bson:"question"`
	Options       []string  `json:"options" bson:"options"`
	CorrectAnswer int       `json:"correctAnswer" bson:"correctAnswer"`
	Explanation   string    `json:"explanation" bson:"explanation"`
	Difficulty    string    `json:"difficulty" bson:"difficulty"`
	CreatedBy     string    `json:"createdBy" bson:"createdBy"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy     string    `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	Active        bool      `json:"active" bson:"active"`
	Source        string    `json:"source,omitempty" bson:"source,omitempty"`
	SourceFile    string    `json:"sourceFile,omitempty" bson:"sourceFile,omitempty"`
}

// StudentQuestion is a question as served to a quiz taker, without the
// answer key.
type StudentQuestion struct {
	ID          string   `json:"id"`
	Program     string   `json:"program"`
	Course      string   `json:"course"`
	Level       string   `json:"level"`
	Semester    string   `json:"semester"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Explanation string   `json:"explanation,omitempty"`
	Difficulty  string   `json:"difficulty"`
}

func (q *Question) ForStudent() StudentQuestion {
	return StudentQuestion{
		ID:          q.ID,
		Program:     q.Program,
		Course:      q.Course,
		Level:       q.Level,
		Semester:    q.Semester,
		Question:    q.Question,
		Options:     q.Options,
		Explanation: q.Explanation,
		Difficulty:  q.Difficulty,
	}
}

// QuestionFilter narrows a question listing. Empty fields match anything.
type QuestionFilter struct {
	Program    string `query:"program"`
	Course     string `query:"course"`
	Level      string `query:"level"`
	Semester   string `query:"semester"`
	Difficulty string `query:"difficulty"`
	ActiveOnly bool   `query:"-"`
}

// QuestionPatch lists the fields an update changes. Nil fields stay as
// they are.
type QuestionPatch struct {
	Question      *string
	Options       []string
	CorrectAnswer *int
	Explanation   *string
	Difficulty    *string
	Active        *bool
	UpdatedAt     time.Time
	UpdatedBy     string
}

func (p *QuestionPatch) Empty() bool {
	return p.Question == nil && p.Options == nil && p.CorrectAnswer == nil &&
		p.Explanation == nil && p.Difficulty == nil && p.Active == nil
}

// GeneratedQuestion is one question proposed by the AI generator, before
// validation.
type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
}

// Valid reports whether the proposal can be saved as is.
func (g *GeneratedQuestion) Valid() bool {
	if g.Question == "" || len(g.Options) != OptionCount {
		return false
	}
	for _, o := range g.Options {
		if o == "" {
			return false
		}
	}
	return g.CorrectAnswer >= 0 && g.CorrectAnswer < OptionCount
}
