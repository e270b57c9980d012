package ai_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pass-questions/internal/quiz/adapter/ai"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if txt, ok := parts[0].(genai.Text); ok {
		f.prompt = string(txt)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(f.reply)}},
		}},
	}, nil
}

func TestGenerate_ParsesFencedReply(t *testing.T) {
	// Arrange
	fake := &fakeModel{reply: "```json\n" + `{"questions":[
		{"question":"What is 2+2?","options":["3","4","5","6"],"correctAnswer":1,"explanation":"Arithmetic","difficulty":"easy"},
		{"question":"Pick one","options":["a","b","c","d"],"correctAnswer":"3"}
	]}` + "\n```"}
	gen := ai.NewGeneratorWithModel(fake)

	// Act
	questions, err := gen.Generate(context.Background(), "source text", 2, "easy")

	// Assert
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "What is 2+2?", questions[0].Question)
	assert.Equal(t, 1, questions[0].CorrectAnswer)
	assert.True(t, questions[0].Valid())
	assert.Equal(t, 3, questions[1].CorrectAnswer)
	assert.True(t, strings.Contains(fake.prompt, "generate 2 multiple-choice"))
	assert.True(t, strings.Contains(fake.prompt, "source text"))
}

func TestGenerate_Errors(t *testing.T) {
	_, err := ai.NewGeneratorWithModel(&fakeModel{err: errors.New("quota")}).Generate(context.Background(), "t", 1, "medium")
	assert.ErrorContains(t, err, "quota")

	_, err = ai.NewGeneratorWithModel(&fakeModel{reply: ""}).Generate(context.Background(), "t", 1, "medium")
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)

	_, err = ai.NewGeneratorWithModel(&fakeModel{reply: "sorry, no"}).Generate(context.Background(), "t", 1, "medium")
	assert.Error(t, err)
}

func TestParseQuestions_BadAnswerIsInvalid(t *testing.T) {
	questions, err := ai.ParseQuestions(`{"questions":[{"question":"Q","options":["a","b","c","d"],"correctAnswer":"B"}]}`)

	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, -1, questions[0].CorrectAnswer)
	assert.False(t, questions[0].Valid())
}
