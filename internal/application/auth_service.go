package application

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AdminAccount is the single back-office identity.
type AdminAccount struct {
	Username     string
	PasswordHash string
}

// AuthService gates the back office behind one configured admin account.
type AuthService struct {
	account        AdminAccount
	sessions       RecordStore[Session]
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(account AdminAccount, sessions RecordStore[Session], verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(account, sessions, verify, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(account AdminAccount, sessions RecordStore[Session], verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		account:        account,
		sessions:       sessions,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate checks the admin credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session store not configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	logger := s.loggerWith(ctx, "Authenticate", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", result.Session.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if username == "" || params.Password == "" || s.account.Username == "" {
		err = ErrInvalidCredentials
		return
	}
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(username)), []byte(strings.ToLower(s.account.Username))) != 1 {
		err = ErrInvalidCredentials
		return
	}
	if verifyErr := s.verifyPassword(s.account.PasswordHash, params.Password); verifyErr != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	id := s.tokenGenerator()
	token := s.tokenGenerator()
	if token == "" {
		token = id
	}
	if token == "" {
		err = fmt.Errorf("token generator returned an empty token")
		return
	}

	session := Session{
		ID:        id,
		Token:     token,
		Username:  s.account.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	_, err = s.sessions.Update(ctx, func(current []Session) ([]Session, error) {
		active := pruneSessions(current, now)
		return append(active, session), nil
	})
	if err != nil {
		err = fmt.Errorf("store session: %w", err)
		return
	}

	result = AuthenticateResult{
		Principal: Principal{Username: session.Username, SessionID: session.ID},
		Session:   session,
	}
	return
}

// ValidateSession verifies that the token belongs to an active session and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", principal.SessionID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var sessions []Session
	sessions, err = s.sessions.Load(ctx)
	if err != nil {
		return
	}

	session, ok := findSession(sessions, trimmed)
	if !ok {
		err = ErrUnauthorized
		return
	}
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(s.now()) {
		err = ErrSessionExpired
		return
	}
	if !strings.EqualFold(session.Username, s.account.Username) {
		err = ErrUnauthorized
		return
	}

	principal = Principal{Username: session.Username, SessionID: session.ID}
	return
}

// RevokeSession stamps the session as revoked and prunes expired sessions.
// Revoked sessions are kept until they expire so a logged-out token keeps
// reporting ErrSessionRevoked. Unknown or already revoked tokens yield
// ErrSessionRevoked.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session store not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", true)
	now := s.now()

	var revokedID string
	_, err := s.sessions.Update(ctx, func(current []Session) ([]Session, error) {
		session, ok := findSession(current, trimmed)
		if !ok || (session.RevokedAt != nil && !session.RevokedAt.IsZero()) {
			return nil, ErrSessionRevoked
		}
		revokedID = session.ID
		revokedAt := now
		for i := range current {
			if current[i].ID == session.ID {
				current[i].RevokedAt = &revokedAt
			}
		}
		return pruneSessions(current, now), nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With("session_id", revokedID).InfoContext(ctx, "session revoked")
	return nil
}

func findSession(sessions []Session, token string) (Session, bool) {
	for _, session := range sessions {
		if subtle.ConstantTimeCompare([]byte(session.Token), []byte(token)) == 1 {
			return session, true
		}
	}
	return Session{}, false
}

// pruneSessions drops the sessions past their expiry, revoked or not.
func pruneSessions(sessions []Session, now time.Time) []Session {
	kept := make([]Session, 0, len(sessions)+1)
	for _, session := range sessions {
		if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
			continue
		}
		kept = append(kept, session)
	}
	return kept
}
