package usecase

import (
	"context"
	"errors"
	"fmt"

	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"
	authusecase "pass-questions/internal/auth/usecase"
	"pass-questions/internal/shared/logger"

	"go.uber.org/zap"
)

var ErrNotLoggedIn = errors.New("user not logged in")

// PaymentUsecaseInterface defines the contract for payment use cases.
type PaymentUsecaseInterface interface {
	MockPayment(ctx context.Context, session *model.Session) (*PaymentResult, error)
}

// PaymentResult carries the session to write back to the cookie. Token is
// empty when nothing changed.
type PaymentResult struct {
	Session *model.Session
	Token   string
	Message string
}

type PaymentUsecase struct {
	accounts repository.AccountRepository
	auth     authusecase.AuthUsecaseInterface
	log      logger.Logger
}

func NewPaymentUsecase(accounts repository.AccountRepository, auth authusecase.AuthUsecaseInterface, log logger.Logger) *PaymentUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &PaymentUsecase{accounts: accounts, auth: auth, log: log.WithComponent("payment")}
}

// MockPayment marks the user paid in the local account table, on the
// profile and in a freshly signed session. Admins never pay.
func (uc *PaymentUsecase) MockPayment(ctx context.Context, session *model.Session) (*PaymentResult, error) {
	if session == nil || session.UID == "" {
		return nil, ErrNotLoggedIn
	}
	if session.IsAdmin() {
		return &PaymentResult{Session: session, Message: "Admin - no payment needed"}, nil
	}

	if uc.accounts != nil && session.Email != "" {
		err := uc.accounts.SetPaidByEmail(ctx, session.Email, true)
		if err != nil && !errors.Is(err, authusecase.ErrAccountNotFound) {
			return nil, fmt.Errorf("failed to update local account: %w", err)
		}
	}

	if err := uc.auth.SetPaid(ctx, session.UID, true); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	updated := *session
	updated.Paid = true
	token, err := uc.auth.IssueToken(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to reissue session: %w", err)
	}

	uc.log.Info("payment recorded", zap.String("uid", session.UID), zap.String("email", session.Email))
	return &PaymentResult{Session: &updated, Token: token, Message: "Payment marked as successful"}, nil
}

var _ PaymentUsecaseInterface = (*PaymentUsecase)(nil)
