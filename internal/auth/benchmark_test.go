package auth_test

import (
	"context"
	"testing"
	"time"

	"pass-questions/internal/auth/adapter/policy"
	"pass-questions/internal/auth/adapter/security"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/testutil"
	"pass-questions/internal/auth/usecase"
)

func BenchmarkDeviceFingerprint(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = usecase.DeviceFingerprint("Mozilla/5.0 (X11; Linux x86_64)", "203.0.113.7")
	}
}

func BenchmarkNewSessionToken(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := usecase.NewSessionToken(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSessionCookieRoundTrip(b *testing.B) {
	svc, err := security.NewJWTokenService(testutil.Config())
	if err != nil {
		b.Fatal(err)
	}
	session := &model.Session{UID: "uid", Email: "a@example.com", Role: model.RoleUser, SessionID: "sid", LoginTime: time.Now()}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		token, err := svc.IssueSessionToken(ctx, session)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := svc.ParseSessionToken(ctx, token); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPaidPolicy(b *testing.B) {
	p, err := policy.NewCELPolicy(testutil.Config())
	if err != nil {
		b.Fatal(err)
	}
	session := &model.Session{UID: "uid", Role: model.RoleUser, Paid: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.AllowPaid(session); err != nil {
			b.Fatal(err)
		}
	}
}
