package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/auth/adapter/policy"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/testutil"
	paymenthttp "pass-questions/internal/payment/adapter/http"
	"pass-questions/internal/payment/config"
	"pass-questions/internal/payment/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockPaymentUsecase struct {
	mock.Mock
}

func (m *mockPaymentUsecase) MockPayment(ctx context.Context, session *model.Session) (*usecase.PaymentResult, error) {
	args := m.Called(session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PaymentResult), args.Error(1)
}

type PaymentHTTPTestSuite struct {
	suite.Suite
	app     *fiber.App
	uc      *mockPaymentUsecase
	session *model.Session
}

func (suite *PaymentHTTPTestSuite) SetupTest() {
	authCfg := testutil.Config()
	pol, err := policy.NewCELPolicy(authCfg)
	require.NoError(suite.T(), err)
	cookies := authhttp.NewCookieManager(authCfg)
	mw := authhttp.NewAuthMiddleware(&testutil.MockAuthUsecase{}, pol, cookies, nil)

	suite.uc = &mockPaymentUsecase{}
	suite.session = nil
	handler := paymenthttp.NewPaymentHTTPHandler(suite.uc, cookies, &config.Config{Amount: 50, Currency: "GHS"}, nil)

	suite.app = fiber.New()
	suite.app.Use(func(c *fiber.Ctx) error {
		if suite.session != nil {
			authhttp.AttachSession(c, suite.session)
		}
		return c.Next()
	})
	handler.RegisterRoutes(suite.app, mw)
}

func (suite *PaymentHTTPTestSuite) do(method, path string) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func (suite *PaymentHTTPTestSuite) TestPaymentPage_Anonymous() {
	resp := suite.do("GET", "/payment/")
	assert.Equal(suite.T(), http.StatusFound, resp.StatusCode)
	assert.Equal(suite.T(), "/auth/login", resp.Header.Get("Location"))
}

func (suite *PaymentHTTPTestSuite) TestPaymentPage_Redirects() {
	suite.session = &model.Session{UID: "a", Role: model.RoleAdmin}
	resp := suite.do("GET", "/payment/")
	assert.Equal(suite.T(), "/admin/dashboard", resp.Header.Get("Location"))

	suite.session = &model.Session{UID: "p", Role: model.RoleUser, Paid: true}
	resp = suite.do("GET", "/payment/")
	assert.Equal(suite.T(), "/dashboard", resp.Header.Get("Location"))
}

func (suite *PaymentHTTPTestSuite) TestPaymentPage_Unpaid() {
	// Arrange
	suite.session = &model.Session{UID: "u", Email: "ama@example.com", Role: model.RoleUser}

	// Act
	resp := suite.do("GET", "/payment/")

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(suite.T(), "payment", body["page"])
	assert.Equal(suite.T(), float64(50), body["amount"])
	assert.Equal(suite.T(), "GHS", body["currency"])
}

func (suite *PaymentHTTPTestSuite) TestMockPayment_SetsCookie() {
	// Arrange
	suite.session = &model.Session{UID: "u", Email: "ama@example.com", Role: model.RoleUser}
	paid := *suite.session
	paid.Paid = true
	suite.uc.On("MockPayment", suite.session).Return(&usecase.PaymentResult{
		Session: &paid, Token: "signed-paid", Message: "Payment marked as successful",
	}, nil)

	// Act
	resp := suite.do("POST", "/payment/mock")

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Contains(suite.T(), resp.Header.Get("Set-Cookie"), "pq_session=signed-paid")
	var body map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(suite.T(), "success", body["status"])
	assert.Equal(suite.T(), "Payment marked as successful", body["message"])
}

func (suite *PaymentHTTPTestSuite) TestMockPayment_Failure() {
	suite.session = &model.Session{UID: "u", Role: model.RoleUser}
	suite.uc.On("MockPayment", suite.session).Return(nil, assert.AnError)

	resp := suite.do("POST", "/payment/mock")

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Empty(suite.T(), resp.Header.Get("Set-Cookie"))
}

func (suite *PaymentHTTPTestSuite) TestSuccess() {
	suite.session = &model.Session{UID: "u", Role: model.RoleUser, Paid: true}
	resp := suite.do("GET", "/payment/success")
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	suite.session = &model.Session{UID: "a", Role: model.RoleAdmin}
	resp = suite.do("GET", "/payment/success")
	assert.Equal(suite.T(), http.StatusFound, resp.StatusCode)
}

func TestPaymentHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentHTTPTestSuite))
}
