package usecase

import (
	"context"
	"math/rand/v2"

	"pass-questions/internal/quiz/domain/model"

	"go.uber.org/zap"
)

// SelectRequest narrows the pool a quiz is drawn from.
type SelectRequest struct {
	Program    string `query:"program"`
	Course     string `query:"course"`
	Level      string `query:"level"`
	Semester   string `query:"semester"`
	Difficulty string `query:"difficulty"`
	Count      int    `query:"count"`
}

// SelectQuiz draws an adaptive quiz. Questions the user recently got wrong
// in the same program and course fill up to IncorrectShare of the quiz; the
// rest is a random sample of the pool. The answer key is never returned.
func (uc *QuizUsecase) SelectQuiz(ctx context.Context, uid string, req SelectRequest) ([]model.StudentQuestion, error) {
	count := req.Count
	if count <= 0 {
		count = uc.config.DefaultQuizSize
	}

	var incorrect []string
	if req.Program != "" && req.Course != "" && uid != "" {
		incorrect = uc.recentIncorrect(ctx, uid, req.Program, req.Course)
	}

	pool, err := uc.questions.List(ctx, model.QuestionFilter{
		Program:    req.Program,
		Course:     req.Course,
		Level:      req.Level,
		Semester:   req.Semester,
		Difficulty: req.Difficulty,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	pool = uc.withoutDeleted(ctx, uid, pool)
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}

	selected := pickAdaptive(pool, incorrect, count, uc.config.IncorrectShare)
	out := make([]model.StudentQuestion, len(selected))
	for i, q := range selected {
		out[i] = q.ForStudent()
	}
	return out, nil
}

// recentIncorrect collects the ids answered wrong in the last attempts at a
// course, newest first and without duplicates. Failures only cost the
// adaptive part of the quiz.
func (uc *QuizUsecase) recentIncorrect(ctx context.Context, uid, program, course string) []string {
	history, err := uc.history.RecentForCourse(ctx, uid, program, course, uc.config.HistoryWindow)
	if err != nil {
		uc.log.Warn("Failed to load quiz history", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, h := range history {
		for _, id := range h.IncorrectQuestions {
			if _, dup := seen[id]; dup || id == "" {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func (uc *QuizUsecase) withoutDeleted(ctx context.Context, uid string, pool []*model.Question) []*model.Question {
	if uc.deleted == nil || uid == "" {
		return pool
	}
	ids, err := uc.deleted.DeletedQuestionIDs(ctx, uid)
	if err != nil {
		uc.log.Warn("Failed to load deleted questions", zap.String("uid", uid), zap.Error(err))
		return pool
	}
	if len(ids) == 0 {
		return pool
	}
	hidden := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		hidden[id] = struct{}{}
	}
	kept := pool[:0:0]
	for _, q := range pool {
		if _, skip := hidden[q.ID]; !skip {
			kept = append(kept, q)
		}
	}
	return kept
}

func pickAdaptive(pool []*model.Question, incorrect []string, count int, share float64) []*model.Question {
	byID := make(map[string]*model.Question, len(pool))
	for _, q := range pool {
		byID[q.ID] = q
	}

	chosen := make(map[string]struct{})
	selected := make([]*model.Question, 0, count)
	limit := float64(count) * share
	for _, id := range incorrect {
		if float64(len(selected)) >= limit {
			break
		}
		q, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := chosen[id]; dup {
			continue
		}
		chosen[id] = struct{}{}
		selected = append(selected, q)
	}

	if remaining := count - len(selected); remaining > 0 {
		available := make([]*model.Question, 0, len(pool))
		for _, q := range pool {
			if _, dup := chosen[q.ID]; !dup {
				available = append(available, q)
			}
		}
		if len(available) > remaining {
			rand.Shuffle(len(available), func(i, j int) {
				available[i], available[j] = available[j], available[i]
			})
			available = available[:remaining]
		}
		selected = append(selected, available...)
	}

	rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected
}
