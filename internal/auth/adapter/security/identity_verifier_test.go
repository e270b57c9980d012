package security_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pass-questions/internal/auth/adapter/security"
	"pass-questions/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACVerifier_RoundTrip(t *testing.T) {
	v := security.NewHMACVerifier("idp-secret", "pass-questions")

	token, err := v.SignIdentity(model.Identity{UID: "uid-1", Email: "Ama@Example.com", Name: "Ama"}, time.Minute)
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", identity.UID)
	assert.Equal(t, "ama@example.com", identity.Email)

	_, err = security.NewHMACVerifier("other", "pass-questions").Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestHMACVerifier_RejectsMissingSubject(t *testing.T) {
	v := security.NewHMACVerifier("idp-secret", "")
	token, err := v.SignIdentity(model.Identity{Email: "a@example.com"}, time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestFirebaseVerifier(t *testing.T) {
	// Arrange
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	var fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.Header().Set("Cache-Control", "public, max-age=600")
		_ = json.NewEncoder(w).Encode(map[string]string{"kid-1": string(certPEM)})
	}))
	defer srv.Close()

	sign := func(kid, aud string) string {
		now := time.Now()
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"iss":   "https://securetoken.google.com/pass-questions",
			"aud":   aud,
			"sub":   "firebase-uid",
			"email": "kofi@example.com",
			"iat":   now.Unix(),
			"exp":   now.Add(time.Hour).Unix(),
		})
		tok.Header["kid"] = kid
		s, err := tok.SignedString(key)
		require.NoError(t, err)
		return s
	}

	v := security.NewFirebaseVerifier("pass-questions", srv.URL, srv.Client())

	// Act
	identity, err := v.Verify(context.Background(), sign("kid-1", "pass-questions"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid", identity.UID)
	assert.Equal(t, "kofi@example.com", identity.Email)

	_, err = v.Verify(context.Background(), sign("kid-1", "someone-else"))
	assert.Error(t, err)

	_, err = v.Verify(context.Background(), sign("kid-unknown", "pass-questions"))
	assert.ErrorIs(t, err, security.ErrUnknownKeyID)

	// the first verify cached the keys; the unknown kid forced one refresh
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches))
}
