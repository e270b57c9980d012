package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pass-questions/internal/auth/testutil"
	quizhttp "pass-questions/internal/quiz/adapter/http"
	"pass-questions/internal/quiz/config"
	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/quiz/usecase"
	apperrors "pass-questions/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockQuizUsecase struct {
	mock.Mock
}

func (m *mockQuizUsecase) ListQuestions(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error) {
	args := m.Called(filter)
	return args.Get(0).([]*model.Question), args.Error(1)
}

func (m *mockQuizUsecase) ListActiveQuestions(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error) {
	args := m.Called(filter)
	return args.Get(0).([]*model.Question), args.Error(1)
}

func (m *mockQuizUsecase) CreateQuestion(ctx context.Context, req usecase.CreateQuestionRequest, createdBy string) (*model.Question, error) {
	args := m.Called(req, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *mockQuizUsecase) UpdateQuestion(ctx context.Context, req usecase.UpdateQuestionRequest, updatedBy string) error {
	return m.Called(req, updatedBy).Error(0)
}

func (m *mockQuizUsecase) DeleteQuestion(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *mockQuizUsecase) UploadOptions(ctx context.Context) *usecase.UploadOptions {
	return m.Called().Get(0).(*usecase.UploadOptions)
}

func (m *mockQuizUsecase) GenerateFromPDF(ctx context.Context, req usecase.GenerateRequest) (*usecase.GenerateResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GenerateResult), args.Error(1)
}

func (m *mockQuizUsecase) SelectQuiz(ctx context.Context, uid string, req usecase.SelectRequest) ([]model.StudentQuestion, error) {
	args := m.Called(uid, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StudentQuestion), args.Error(1)
}

func (m *mockQuizUsecase) SubmitResults(ctx context.Context, uid, username string, req usecase.SubmitRequest) (*usecase.SubmitResult, error) {
	args := m.Called(uid, username, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SubmitResult), args.Error(1)
}

func (m *mockQuizUsecase) GetAnalytics(ctx context.Context, uid string) (*model.AnalyticsReport, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalyticsReport), args.Error(1)
}

func (m *mockQuizUsecase) GetProgress(ctx context.Context, uid, timeRange string) (*model.Progress, error) {
	args := m.Called(uid, timeRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Progress), args.Error(1)
}

func (m *mockQuizUsecase) ScoreDistribution(ctx context.Context, uid string) *model.ScoreDistribution {
	return m.Called(uid).Get(0).(*model.ScoreDistribution)
}

func (m *mockQuizUsecase) ResetAnalytics(ctx context.Context, uid string) (int64, error) {
	args := m.Called(uid)
	return args.Get(0).(int64), args.Error(1)
}

type QuizHTTPTestSuite struct {
	suite.Suite
	gate *testutil.Gate
	uc   *mockQuizUsecase
	app  *fiber.App
}

func (suite *QuizHTTPTestSuite) SetupTest() {
	gate, err := testutil.NewGate()
	require.NoError(suite.T(), err)
	suite.gate = gate
	suite.uc = &mockQuizUsecase{}
	suite.app = gate.App()
	quizhttp.NewQuizHTTPHandler(suite.uc, config.DefaultConfig(), nil).RegisterRoutes(suite.app, gate.Middleware)
}

func (suite *QuizHTTPTestSuite) send(req *http.Request) *http.Response {
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func (suite *QuizHTTPTestSuite) decode(resp *http.Response) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (suite *QuizHTTPTestSuite) TestAdminQuestions_RequireAdmin() {
	suite.gate.AsStudent(true)

	resp := suite.send(httptest.NewRequest("GET", "/admin/api/admin/questions", nil))

	assert.Equal(suite.T(), http.StatusForbidden, resp.StatusCode)
	suite.uc.AssertNotCalled(suite.T(), "ListQuestions", mock.Anything)
}

func (suite *QuizHTTPTestSuite) TestListQuestions_PassesFilter() {
	// Arrange
	suite.gate.AsAdmin()
	suite.uc.On("ListQuestions", model.QuestionFilter{Program: "BSc CS", Course: "CSC101"}).
		Return([]*model.Question{{ID: "q1", CorrectAnswer: 2}}, nil)

	// Act
	resp := suite.send(httptest.NewRequest("GET", "/admin/api/admin/questions?program=BSc+CS&course=CSC101", nil))

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	out := suite.decode(resp)
	assert.Equal(suite.T(), float64(1), out["count"])
	first := out["questions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(suite.T(), float64(2), first["correctAnswer"])
}

func (suite *QuizHTTPTestSuite) TestListActiveQuestions_HidesAnswerFromStudents() {
	suite.gate.AsStudent(false)
	suite.uc.On("ListActiveQuestions", model.QuestionFilter{}).
		Return([]*model.Question{{ID: "q1", CorrectAnswer: 3, Options: []string{"a", "b", "c", "d"}}}, nil)

	resp := suite.send(httptest.NewRequest("GET", "/admin/api/questions", nil))

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	first := suite.decode(resp)["questions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(suite.T(), "q1", first["id"])
	assert.NotContains(suite.T(), first, "correctAnswer")
}

func (suite *QuizHTTPTestSuite) TestCreateQuestion() {
	// Arrange
	suite.gate.AsAdmin()
	suite.uc.On("CreateQuestion", mock.MatchedBy(func(r usecase.CreateQuestionRequest) bool {
		return r.Program == "BSc CS" && r.OptionA == "a" && string(r.CorrectAnswer) == `"1"`
	}), "admin-1").Return(&model.Question{ID: "q-new"}, nil)
	body := `{"program":"BSc CS","course":"CSC101","level":"100","semester":"First","question":"Q?",
		"optionA":"a","optionB":"b","optionC":"c","optionD":"d","correctAnswer":"1"}`

	// Act
	resp := suite.send(jsonRequest("POST", "/admin/api/admin/questions", body))

	// Assert
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	out := suite.decode(resp)
	assert.Equal(suite.T(), "q-new", out["id"])
	assert.Equal(suite.T(), "Question added successfully", out["message"])
}

func (suite *QuizHTTPTestSuite) TestCreateQuestion_Errors() {
	suite.gate.AsAdmin()
	verrs := apperrors.NewValidationErrors()
	verrs.Add("program", "program is required", "")
	verrs.Add("question", "question is required", "")
	suite.uc.On("CreateQuestion", mock.MatchedBy(func(r usecase.CreateQuestionRequest) bool { return r.Program == "" }), "admin-1").
		Return(nil, verrs).Once()
	suite.uc.On("CreateQuestion", mock.Anything, "admin-1").
		Return(nil, &usecase.MissingOptionsError{Fields: []string{"optionC"}}).Once()

	resp := suite.send(jsonRequest("POST", "/admin/api/admin/questions", `{}`))
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Equal(suite.T(), "Missing required fields: program, question", suite.decode(resp)["error"])

	resp = suite.send(jsonRequest("POST", "/admin/api/admin/questions", `{"program":"x"}`))
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Equal(suite.T(), "missing option fields: optionC", suite.decode(resp)["error"])
}

func (suite *QuizHTTPTestSuite) TestUpdateAndDeleteQuestion() {
	suite.gate.AsAdmin()
	suite.uc.On("UpdateQuestion", mock.MatchedBy(func(r usecase.UpdateQuestionRequest) bool {
		return r.ID == "q1" && r.Active != nil && !*r.Active
	}), "admin-1").Return(nil)
	suite.uc.On("UpdateQuestion", mock.Anything, "admin-1").Return(usecase.ErrQuestionNotFound)
	suite.uc.On("DeleteQuestion", "q1").Return(nil)
	suite.uc.On("DeleteQuestion", "").Return(usecase.ErrQuestionIDRequired)

	resp := suite.send(jsonRequest("PUT", "/admin/api/admin/questions", `{"id":"q1","active":false}`))
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	resp = suite.send(jsonRequest("PUT", "/admin/api/admin/questions", `{"id":"gone","active":true}`))
	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)

	resp = suite.send(httptest.NewRequest("DELETE", "/admin/api/admin/questions?id=q1", nil))
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	resp = suite.send(httptest.NewRequest("DELETE", "/admin/api/admin/questions", nil))
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func generateForm(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("course", "Biology"))
	require.NoError(t, w.WriteField("num_questions", "5"))
	if withFile {
		part, err := w.CreateFormFile("pdf_file", "notes.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func (suite *QuizHTTPTestSuite) TestGenerateQuestions() {
	// Arrange
	suite.gate.AsAdmin()
	suite.uc.On("GenerateFromPDF", mock.MatchedBy(func(r usecase.GenerateRequest) bool {
		return r.Course == "Biology" && r.NumQuestions == 5 && r.File.Name == "notes.pdf" && r.CreatedBy == "admin-1"
	})).Return(&usecase.GenerateResult{SavedCount: 4, FailedCount: 1, Failed: []string{"Question 2: Invalid format"}}, nil)
	body, contentType := generateForm(suite.T(), true)
	req := httptest.NewRequest("POST", "/admin/api/generate-questions", body)
	req.Header.Set("Content-Type", contentType)

	// Act
	resp := suite.send(req)

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	out := suite.decode(resp)
	assert.Equal(suite.T(), float64(4), out["saved_count"])
	assert.Equal(suite.T(), float64(1), out["failed_count"])
}

func (suite *QuizHTTPTestSuite) TestGenerateQuestions_Errors() {
	suite.gate.AsAdmin()
	suite.uc.On("GenerateFromPDF", mock.Anything).Return(nil, usecase.ErrAIUnavailable)

	body, contentType := generateForm(suite.T(), false)
	req := httptest.NewRequest("POST", "/admin/api/generate-questions", body)
	req.Header.Set("Content-Type", contentType)
	resp := suite.send(req)
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)

	body, contentType = generateForm(suite.T(), true)
	req = httptest.NewRequest("POST", "/admin/api/generate-questions", body)
	req.Header.Set("Content-Type", contentType)
	resp = suite.send(req)
	assert.Equal(suite.T(), http.StatusServiceUnavailable, resp.StatusCode)
}

func (suite *QuizHTTPTestSuite) TestQuizQuestions() {
	suite.gate.AsStudent(false)
	suite.uc.On("SelectQuiz", "student-1", usecase.SelectRequest{Program: "BSc CS", Course: "CSC101", Count: 10}).
		Return([]model.StudentQuestion{{ID: "q1"}, {ID: "q2"}}, nil)
	suite.uc.On("SelectQuiz", "student-1", mock.Anything).Return(nil, usecase.ErrNoQuestions)

	resp := suite.send(httptest.NewRequest("GET", "/api/quiz/questions?program=BSc+CS&course=CSC101&count=10", nil))
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), float64(2), suite.decode(resp)["count"])

	resp = suite.send(httptest.NewRequest("GET", "/api/quiz/questions?program=Nothing", nil))
	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func (suite *QuizHTTPTestSuite) TestQuizQuestions_RequiresLogin() {
	suite.gate.AsAnonymous()

	resp := suite.send(httptest.NewRequest("GET", "/api/quiz/questions", nil))

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (suite *QuizHTTPTestSuite) TestSubmitResults() {
	// Arrange
	suite.gate.AsStudent(true)
	suite.uc.On("SubmitResults", "student-1", "student", mock.MatchedBy(func(r usecase.SubmitRequest) bool {
		return r.Program == "BSc CS" && len(r.Answers) == 2 && !r.Answers[1].IsCorrect
	})).Return(&usecase.SubmitResult{QuizID: "quiz-1", IncorrectCount: 1, AdaptiveMessage: "1 questions will be included in your next quiz for practice"}, nil)
	body := `{"program":"BSc CS","course":"CSC101","score":50,"total_questions":2,"correct_answers":1,
		"answers":[{"question_id":"q1","is_correct":true},{"question_id":"q2","is_correct":false}]}`

	// Act
	resp := suite.send(jsonRequest("POST", "/api/submit-quiz-results", body))

	// Assert
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	out := suite.decode(resp)
	assert.Equal(suite.T(), "quiz-1", out["quiz_id"])
	assert.Equal(suite.T(), float64(1), out["incorrect_count"])
}

func (suite *QuizHTTPTestSuite) TestSubmitResults_Invalid() {
	suite.gate.AsStudent(true)
	verrs := apperrors.NewValidationErrors()
	verrs.Add("total_questions", "total_questions must be greater than 0", 0)
	suite.uc.On("SubmitResults", "student-1", "student", mock.Anything).Return(nil, verrs)

	resp := suite.send(jsonRequest("POST", "/api/submit-quiz-results", `{"total_questions":0}`))

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Equal(suite.T(), "total_questions must be greater than 0", suite.decode(resp)["error"])
}

func (suite *QuizHTTPTestSuite) TestAnalytics() {
	suite.gate.AsStudent(false)
	suite.uc.On("GetAnalytics", "student-1").
		Return(&model.AnalyticsReport{HasData: false, Message: "Complete your first quiz to see analytics!"}, nil)

	resp := suite.send(httptest.NewRequest("GET", "/api/analytics", nil))

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	analytics := suite.decode(resp)["analytics"].(map[string]interface{})
	assert.Equal(suite.T(), false, analytics["has_data"])
}

func (suite *QuizHTTPTestSuite) TestProgress_DefaultsToMonth() {
	suite.gate.AsStudent(false)
	suite.uc.On("GetProgress", "student-1", "month").Return(model.SampleProgress("month"), nil)
	suite.uc.On("GetProgress", "student-1", "week").Return(model.SampleProgress("week"), nil)

	resp := suite.send(httptest.NewRequest("GET", "/api/analytics/progress", nil))
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	resp = suite.send(httptest.NewRequest("GET", "/api/analytics/progress?range=week", nil))
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	suite.uc.AssertExpectations(suite.T())
}

func (suite *QuizHTTPTestSuite) TestResetAnalytics() {
	suite.gate.AsStudent(false)
	suite.uc.On("ResetAnalytics", "student-1").Return(int64(3), nil)

	resp := suite.send(httptest.NewRequest("POST", "/api/analytics/reset", nil))

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), float64(3), suite.decode(resp)["deleted_quizzes"])
}

func (suite *QuizHTTPTestSuite) TestScoreDistribution_Public() {
	suite.gate.AsAnonymous()
	suite.uc.On("ScoreDistribution", "").Return(model.DefaultScoreDistribution())

	resp := suite.send(httptest.NewRequest("GET", "/api/score-distribution", nil))

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
}

func (suite *QuizHTTPTestSuite) TestPages() {
	suite.gate.AsStudent(false)

	resp := suite.send(httptest.NewRequest("GET", "/quiz", nil))
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "quiz", suite.decode(resp)["page"])

	suite.gate.AsAnonymous()
	resp = suite.send(httptest.NewRequest("GET", "/analytics", nil))
	assert.Equal(suite.T(), http.StatusFound, resp.StatusCode)
}

func TestQuizHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(QuizHTTPTestSuite))
}
