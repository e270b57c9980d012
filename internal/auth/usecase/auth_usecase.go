package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	LoginComplete(ctx context.Context, req LoginCompleteRequest) (*LoginResult, error)
	Signup(ctx context.Context, req SignupRequest) (*model.Account, error)
	VerifyEmail(ctx context.Context, token string) error
	PasswordLogin(ctx context.Context, req PasswordLoginRequest) (*LoginResult, error)
	ValidateSession(ctx context.Context, session *model.Session) (model.SessionCheck, error)
	Logout(ctx context.Context, session *model.Session) error
	ForceLogoutAll(ctx context.Context, uid string) error
	RefreshRole(ctx context.Context, session *model.Session) (*model.Session, bool, error)
	IssueToken(ctx context.Context, session *model.Session) (string, error)
	ParseToken(ctx context.Context, token string) (*model.Session, error)
	GetUser(ctx context.Context, uid string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	SetRole(ctx context.Context, uid, role string) error
	SetPaid(ctx context.Context, uid string, paid bool) error
}

// LoginCompleteRequest carries the identity provider token from the client.
// UserAgent and IP are filled by the transport.
type LoginCompleteRequest struct {
	IDToken   string `json:"id_token" validate:"required"`
	Username  string `json:"username" validate:"max=150"`
	UserAgent string `json:"-"`
	IP        string `json:"-"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"notblank,max=150"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type PasswordLoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	UserAgent string `json:"-"`
	IP        string `json:"-"`
}

// LoginResult is a freshly established session.
type LoginResult struct {
	Session  *model.Session
	Token    string
	Redirect string
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	tokens   repository.TokenService
	identity repository.IdentityVerifier
	cache    repository.SessionCache
	bus      eventbus.Bus
	config   *config.Config
	log      logger.Logger
	now      func() time.Time
}

// NewAuthUsecase creates a new instance of AuthUsecase. cache and bus may
// be nil.
func NewAuthUsecase(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	tokens repository.TokenService,
	identity repository.IdentityVerifier,
	cache repository.SessionCache,
	bus eventbus.Bus,
	cfg *config.Config,
	log logger.Logger,
) *AuthUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthUsecase{
		users:    users,
		accounts: accounts,
		tokens:   tokens,
		identity: identity,
		cache:    cache,
		bus:      bus,
		config:   cfg,
		log:      log.WithComponent("auth"),
		now:      time.Now,
	}
}

// LoginComplete verifies an identity token and starts a new session,
// replacing any session the user had on another device.
func (uc *AuthUsecase) LoginComplete(ctx context.Context, req LoginCompleteRequest) (*LoginResult, error) {
	if uc.identity == nil {
		return nil, ErrInvalidIdentity
	}
	identity, err := uc.identity.Verify(ctx, req.IDToken)
	if err != nil {
		uc.log.Warn("identity token rejected", zap.Error(err))
		return nil, ErrInvalidIdentity
	}
	if identity.UID == "" || identity.Email == "" {
		return nil, ErrMissingIdentity
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = identity.Name
	}
	return uc.establishSession(ctx, identity.UID, identity.Email, username, model.RoleUser, false, req.UserAgent, req.IP)
}

// Signup creates an unverified local account.
func (uc *AuthUsecase) Signup(ctx context.Context, req SignupRequest) (*model.Account, error) {
	if uc.accounts == nil {
		return nil, fmt.Errorf("local accounts are not configured")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := uc.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Username:          strings.TrimSpace(req.Username),
		Email:             email,
		PasswordHash:      string(hash),
		VerificationToken: sql.NullString{String: token, Valid: true},
		FirebaseUID:       sql.NullString{String: "local-" + uuid.NewString(), Valid: true},
		CreatedAt:         uc.now().UTC(),
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	uc.log.Info("account created, verification pending",
		zap.String("email", email),
		zap.String("verify_url", "/auth/verify?token="+token))
	return account, nil
}

func (uc *AuthUsecase) VerifyEmail(ctx context.Context, token string) error {
	if uc.accounts == nil || token == "" {
		return ErrTokenInvalid
	}
	account, err := uc.accounts.GetByVerificationToken(ctx, token)
	if errors.Is(err, ErrAccountNotFound) {
		return ErrTokenInvalid
	}
	if err != nil {
		return err
	}
	return uc.accounts.MarkVerified(ctx, account.ID)
}

// PasswordLogin authenticates a local account and starts a session the same
// way LoginComplete does.
func (uc *AuthUsecase) PasswordLogin(ctx context.Context, req PasswordLoginRequest) (*LoginResult, error) {
	if uc.accounts == nil {
		return nil, ErrInvalidCredentials
	}
	account, err := uc.accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsVerified {
		return nil, ErrEmailNotVerified
	}

	role := model.RoleUser
	if account.IsAdmin {
		role = model.RoleAdmin
	}
	return uc.establishSession(ctx, account.FirebaseUID.String, account.Email, account.Username, role, account.HasPaid, req.UserAgent, req.IP)
}

func (uc *AuthUsecase) establishSession(ctx context.Context, uid, email, username, defaultRole string, defaultPaid bool, userAgent, ip string) (*LoginResult, error) {
	sessionID, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	fingerprint := DeviceFingerprint(userAgent, ip)
	now := uc.now()

	role, paid := defaultRole, defaultPaid
	existing, err := uc.users.GetByID(ctx, uid)
	switch {
	case err == nil:
		role, paid = existing.Role, existing.Paid
		if role == "" {
			role = model.RoleUser
		}
		if existing.Username != "" {
			username = existing.Username
		}
		if err := uc.users.StartSession(ctx, uid, repository.SessionStart{
			SessionID:         sessionID,
			DeviceFingerprint: fingerprint,
			At:                now,
		}); err != nil {
			return nil, fmt.Errorf("failed to start session: %w", err)
		}
		if existing.ActiveSessionID != "" {
			uc.log.Info("login from a new device, previous session invalidated", zap.String("uid", uid))
			uc.revoke(ctx, uid, existing.ActiveSessionID, model.ReasonAnotherLogin)
		}
	case errors.Is(err, ErrUserNotFound):
		created := now
		user := &model.User{
			UID:               uid,
			Email:             email,
			Username:          username,
			Role:              role,
			Paid:              paid,
			ActiveSessionID:   sessionID,
			SessionCreated:    &created,
			DeviceFingerprint: fingerprint,
			LastLogin:         &created,
			LoginCount:        1,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := uc.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	switch {
	case uc.cache == nil:
	case uc.config.SessionCacheTTL > 0:
		uc.cacheState(ctx, uid, &model.SessionState{ActiveSessionID: sessionID, SessionCreated: &now})
	default:
		if err := uc.cache.Invalidate(ctx, uid); err != nil {
			uc.log.Warn("session cache invalidate failed", zap.String("uid", uid), zap.Error(err))
		}
	}

	session := &model.Session{
		UID:               uid,
		Email:             email,
		Username:          username,
		Role:              role,
		Paid:              paid,
		SessionID:         sessionID,
		DeviceFingerprint: fingerprint,
		LoginTime:         now,
	}
	token, err := uc.tokens.IssueSessionToken(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &LoginResult{Session: session, Token: token, Redirect: RedirectFor(role, paid)}, nil
}

// ValidateSession checks a cookie session against the stored active
// session. Expired sessions are cleared from the store.
func (uc *AuthUsecase) ValidateSession(ctx context.Context, session *model.Session) (model.SessionCheck, error) {
	if session == nil {
		return model.SessionCheck{Reason: model.ReasonNoSession, Message: "No active session"}, nil
	}
	if session.UID == "" || session.SessionID == "" {
		return model.SessionCheck{Reason: model.ReasonInvalid, Message: "Invalid session data"}, nil
	}

	state, cached, err := uc.sessionState(ctx, session.UID)
	if err == nil && cached && state.ActiveSessionID != session.SessionID {
		// A cached state can predate the login that issued this cookie.
		state, err = uc.storedState(ctx, session.UID)
	}
	if errors.Is(err, ErrUserNotFound) {
		return model.SessionCheck{Reason: model.ReasonUserNotFound, Message: "User not found"}, nil
	}
	if err != nil {
		return model.SessionCheck{}, err
	}

	if state.ActiveSessionID != session.SessionID {
		return model.SessionCheck{Reason: model.ReasonAnotherLogin, Message: "Session invalidated by another login"}, nil
	}

	if state.SessionCreated != nil && uc.now().Sub(*state.SessionCreated) > uc.config.SessionTTL {
		if err := uc.clearSession(ctx, session.UID); err != nil {
			return model.SessionCheck{}, err
		}
		uc.revoke(ctx, session.UID, session.SessionID, model.ReasonExpired)
		return model.SessionCheck{Reason: model.ReasonExpired, Message: "Session expired"}, nil
	}

	return model.SessionCheck{Valid: true, Message: "Session valid"}, nil
}

// sessionState returns the session record for uid and whether it came from
// the cache.
func (uc *AuthUsecase) sessionState(ctx context.Context, uid string) (*model.SessionState, bool, error) {
	if uc.cache != nil {
		state, err := uc.cache.Get(ctx, uid)
		if err == nil && state != nil {
			return state, true, nil
		}
		if err != nil {
			uc.log.Debug("session cache miss", zap.String("uid", uid), zap.Error(err))
		}
	}
	state, err := uc.storedState(ctx, uid)
	return state, false, err
}

// storedState reads the user store and refreshes the cache with the result.
func (uc *AuthUsecase) storedState(ctx context.Context, uid string) (*model.SessionState, error) {
	user, err := uc.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	state := &model.SessionState{ActiveSessionID: user.ActiveSessionID, SessionCreated: user.SessionCreated}
	uc.cacheState(ctx, uid, state)
	return state, nil
}

func (uc *AuthUsecase) cacheState(ctx context.Context, uid string, state *model.SessionState) {
	if uc.cache == nil || uc.config.SessionCacheTTL <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, uid, state, uc.config.SessionCacheTTL); err != nil {
		uc.log.Warn("session cache set failed", zap.String("uid", uid), zap.Error(err))
	}
}

func (uc *AuthUsecase) clearSession(ctx context.Context, uid string) error {
	if err := uc.users.ClearSession(ctx, uid); err != nil {
		return err
	}
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, uid); err != nil {
			uc.log.Warn("session cache invalidate failed", zap.String("uid", uid), zap.Error(err))
		}
	}
	return nil
}

func (uc *AuthUsecase) revoke(ctx context.Context, uid, sessionID, reason string) {
	rev := model.Revocation{UID: uid, SessionID: sessionID, Reason: reason}
	if uc.bus != nil {
		uc.bus.PublishAndForget(ctx, eventbus.NewEvent(eventbus.EventTypeSessionRevoked, "auth", rev))
	}
	if uc.cache != nil {
		if err := uc.cache.PublishRevocation(ctx, rev); err != nil {
			uc.log.Warn("revocation fan-out failed", zap.String("uid", uid), zap.Error(err))
		}
	}
}

// Logout clears the server-side session fields for the session's user.
func (uc *AuthUsecase) Logout(ctx context.Context, session *model.Session) error {
	if session == nil || session.UID == "" {
		return nil
	}
	if err := uc.clearSession(ctx, session.UID); err != nil && !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	uc.revoke(ctx, session.UID, session.SessionID, model.ReasonLoggedOut)
	return nil
}

// ForceLogoutAll clears whatever session uid holds, on any device.
func (uc *AuthUsecase) ForceLogoutAll(ctx context.Context, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ErrUIDRequired
	}
	if err := uc.clearSession(ctx, uid); err != nil {
		return err
	}
	uc.revoke(ctx, uid, "", model.ReasonLoggedOut)
	return nil
}

// RefreshRole re-reads the role from the store. The returned bool is true
// when the stored role differs from the session's.
func (uc *AuthUsecase) RefreshRole(ctx context.Context, session *model.Session) (*model.Session, bool, error) {
	user, err := uc.users.GetByID(ctx, session.UID)
	if err != nil {
		return session, false, err
	}
	role := user.Role
	if role == "" {
		role = model.RoleUser
	}
	if role == session.Role {
		return session, false, nil
	}
	updated := *session
	updated.Role = role
	return &updated, true, nil
}

func (uc *AuthUsecase) IssueToken(ctx context.Context, session *model.Session) (string, error) {
	return uc.tokens.IssueSessionToken(ctx, session)
}

func (uc *AuthUsecase) ParseToken(ctx context.Context, token string) (*model.Session, error) {
	session, err := uc.tokens.ParseSessionToken(ctx, token)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return session, nil
}

func (uc *AuthUsecase) GetUser(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, ErrUIDRequired
	}
	return uc.users.GetByID(ctx, uid)
}

func (uc *AuthUsecase) ListUsers(ctx context.Context) ([]*model.User, error) {
	return uc.users.List(ctx)
}

// SetRole accepts only "admin" and "user".
func (uc *AuthUsecase) SetRole(ctx context.Context, uid, role string) error {
	if uid == "" {
		return ErrUIDRequired
	}
	if !model.ValidRole(role) {
		return ErrInvalidRole
	}
	if err := uc.users.UpdateRole(ctx, uid, role); err != nil {
		return err
	}
	if uc.cache != nil {
		_ = uc.cache.Invalidate(ctx, uid)
	}
	return nil
}

func (uc *AuthUsecase) SetPaid(ctx context.Context, uid string, paid bool) error {
	if uid == "" {
		return ErrUIDRequired
	}
	if err := uc.users.UpdatePaid(ctx, uid, paid); err != nil {
		return err
	}
	if paid && uc.bus != nil {
		uc.bus.PublishAndForget(ctx, eventbus.NewEvent(eventbus.EventTypeUserPaid, "admin", uid))
	}
	return nil
}

// Ensure AuthUsecase implements AuthUsecaseInterface
var _ AuthUsecaseInterface = (*AuthUsecase)(nil)
