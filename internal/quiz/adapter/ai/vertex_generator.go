package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pass-questions/internal/quiz/config"
	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/quiz/domain/repository"

	"cloud.google.com/go/vertexai/genai"
)

const systemPrompt = "You are a quiz question generator. Always respond with valid JSON."

const userPrompt = `Based on the following text content, generate %d multiple-choice quiz questions.
Difficulty level: %s

Text content:
%s

Generate questions in this exact JSON format:
{
  "questions": [
    {
      "question": "The question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": 0,
      "explanation": "Brief explanation of the correct answer",
      "difficulty": "%s"
    }
  ]
}

Rules:
1. Each question must be based on the provided text
2. Options must be plausible but only one correct
3. correctAnswer must be 0, 1, 2, or 3 (corresponding to options A-D)
4. Return ONLY the JSON, no other text`

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned no content")

// ContentModel is the part of *genai.GenerativeModel the generator uses.
type ContentModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexGenerator asks a Gemini model on Vertex AI for quiz questions.
type VertexGenerator struct {
	model  ContentModel
	client *genai.Client
}

var _ repository.QuestionGenerator = (*VertexGenerator)(nil)

func NewVertexGenerator(ctx context.Context, cfg config.AIConfig) (*VertexGenerator, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("NewVertexGenerator: project id and region cannot be empty")
	}
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	m := client.GenerativeModel(cfg.Model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(cfg.Temperature),
		MaxOutputTokens:  genai.Ptr(cfg.MaxTokens),
	}
	return &VertexGenerator{model: m, client: client}, nil
}

// NewGeneratorWithModel wraps an already configured model.
func NewGeneratorWithModel(m ContentModel) *VertexGenerator {
	return &VertexGenerator{model: m}
}

func (g *VertexGenerator) Generate(ctx context.Context, text string, count int, difficulty string) ([]model.GeneratedQuestion, error) {
	prompt := fmt.Sprintf(userPrompt, count, difficulty, text, difficulty)
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	body := responseText(resp)
	if body == "" {
		return nil, ErrEmptyResponse
	}
	return ParseQuestions(body)
}

func (g *VertexGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}

type rawQuestion struct {
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Difficulty    string          `json:"difficulty"`
}

// ParseQuestions reads the JSON object embedded in a model reply. Text
// around the outermost braces, such as code fences, is ignored. An
// unreadable correctAnswer is kept as -1 so validation rejects it.
func ParseQuestions(reply string) ([]model.GeneratedQuestion, error) {
	start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var payload struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}

	out := make([]model.GeneratedQuestion, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		out = append(out, model.GeneratedQuestion{
			Question:      strings.TrimSpace(q.Question),
			Options:       q.Options,
			CorrectAnswer: answerIndex(q.CorrectAnswer),
			Explanation:   q.Explanation,
			Difficulty:    q.Difficulty,
		})
	}
	return out, nil
}

func answerIndex(raw json.RawMessage) int {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return -1
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return -1
}
