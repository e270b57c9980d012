package security_test

import (
	"context"
	"testing"
	"time"

	"pass-questions/internal/auth/adapter/security"
	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JWTTestSuite struct {
	suite.Suite
	config  *config.Config
	service *security.JWTokenService
}

func (suite *JWTTestSuite) SetupTest() {
	suite.config = &config.Config{
		SessionSecretKey: "test-secret-key-32-characters-long-12345",
		SessionIssuer:    "test-issuer",
		SessionTTL:       24 * time.Hour,
	}

	service, err := security.NewJWTokenService(suite.config)
	require.NoError(suite.T(), err)
	suite.service = service
}

func (suite *JWTTestSuite) TestNewJWTokenService_ValidationErrors() {
	testCases := []struct {
		name         string
		modifyConfig func(*config.Config)
		expectedErr  string
	}{
		{"empty secret key", func(c *config.Config) { c.SessionSecretKey = "" }, "session secret key cannot be empty"},
		{"empty issuer", func(c *config.Config) { c.SessionIssuer = "" }, "session issuer cannot be empty"},
		{"zero TTL", func(c *config.Config) { c.SessionTTL = 0 }, "session TTL must be positive"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			cfg := *suite.config
			tc.modifyConfig(&cfg)

			service, err := security.NewJWTokenService(&cfg)

			assert.Nil(suite.T(), service)
			assert.EqualError(suite.T(), err, tc.expectedErr)
		})
	}
}

func (suite *JWTTestSuite) TestIssueAndParse_RoundTrip() {
	// Arrange
	session := &model.Session{
		UID:               "uid-1",
		Email:             "ama@example.com",
		Username:          "ama",
		Role:              model.RoleUser,
		Paid:              true,
		SessionID:         "sid-123",
		DeviceFingerprint: "fp",
		LoginTime:         time.Now().Truncate(time.Second),
	}

	// Act
	token, err := suite.service.IssueSessionToken(context.Background(), session)
	require.NoError(suite.T(), err)
	parsed, err := suite.service.ParseSessionToken(context.Background(), token)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), session.UID, parsed.UID)
	assert.Equal(suite.T(), session.SessionID, parsed.SessionID)
	assert.True(suite.T(), parsed.Paid)
	assert.Equal(suite.T(), session.LoginTime.Unix(), parsed.LoginTime.Unix())
}

func (suite *JWTTestSuite) TestParse_Expired() {
	token, err := suite.service.IssueSessionToken(context.Background(), &model.Session{
		UID: "uid-1", SessionID: "s", LoginTime: time.Now().Add(-25 * time.Hour),
	})
	require.NoError(suite.T(), err)

	_, err = suite.service.ParseSessionToken(context.Background(), token)

	assert.ErrorIs(suite.T(), err, security.ErrTokenExpired)
}

func (suite *JWTTestSuite) TestParse_WrongSecret() {
	other := *suite.config
	other.SessionSecretKey = "another-secret"
	otherSvc, err := security.NewJWTokenService(&other)
	require.NoError(suite.T(), err)
	token, err := otherSvc.IssueSessionToken(context.Background(), &model.Session{UID: "u", SessionID: "s"})
	require.NoError(suite.T(), err)

	_, err = suite.service.ParseSessionToken(context.Background(), token)

	assert.ErrorIs(suite.T(), err, security.ErrTokenSignatureInvalid)
}

func (suite *JWTTestSuite) TestParse_RejectsNoneAndGarbage() {
	claims := jwt.MapClaims{"sub": "uid-1", "iss": "test-issuer", "exp": time.Now().Add(time.Hour).Unix()}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(suite.T(), err)

	_, err = suite.service.ParseSessionToken(context.Background(), unsigned)
	assert.Error(suite.T(), err)

	_, err = suite.service.ParseSessionToken(context.Background(), "not.a.jwt")
	assert.ErrorIs(suite.T(), err, security.ErrTokenInvalid)

	_, err = suite.service.ParseSessionToken(context.Background(), "")
	assert.ErrorIs(suite.T(), err, security.ErrTokenInvalid)
}

func TestJWTTestSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}
