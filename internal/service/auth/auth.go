// Package auth implements email/password login with PASETO-backed sessions
// and phone verification over one-time codes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/internal/model"
	"github.com/bookline/bookline_backend/pkg/crypto"
	pasetotoken "github.com/bookline/bookline_backend/pkg/paseto"
	"github.com/bookline/bookline_backend/pkg/sms"
	"github.com/bookline/bookline_backend/pkg/util/otp"
	"github.com/bookline/bookline_backend/pkg/util/password"
)

const (
	maxOTPAttempts   = 5
	accountLockMins  = 15
	maxLoginAttempts = 5
)

// redisKeyOTP returns the Redis key for the OTP hash associated with a phone.
func redisKeyOTP(phone string) string { return "otp:" + phone }

// redisKeyOTPAttempts returns the Redis key for OTP attempt counter.
func redisKeyOTPAttempts(phone string) string { return "otp:attempts:" + phone }

// redisKeySession returns the Redis key for a session.
func redisKeySession(sessionID string) string { return "session:" + sessionID }

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string
	Password string
}

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until access token expires
}

// LoginResult reports credential failures in-band; Tokens is set only on
// success.
type LoginResult struct {
	Success bool
	Message string
	Tokens  *AuthTokens
}

// Notifier enqueues a notification record for a user. nil disables
// notifications.
type Notifier interface {
	Enqueue(ctx context.Context, userID uint, message string) (*model.Notification, error)
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	RequestPhoneOTP(ctx context.Context, userID uint) error
	VerifyPhoneOTP(ctx context.Context, userID uint, code string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	db       *gorm.DB
	rdb      *redis.Client
	sms      *sms.Client
	paseto   *pasetotoken.Manager
	notifier Notifier
	cfg      *config.Config
	encKey   []byte // AES-256 key for profile phone decryption
}

func New(
	db *gorm.DB,
	rdb *redis.Client,
	smsCli *sms.Client,
	paseto *pasetotoken.Manager,
	notifier Notifier,
	cfg *config.Config,
) (Service, error) {
	encKey, err := crypto.KeyFromHex(cfg.Authentication.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("auth service: invalid encryption key: %w", err)
	}
	return &authService{
		db:       db,
		rdb:      rdb,
		sms:      smsCli,
		paseto:   paseto,
		notifier: notifier,
		cfg:      cfg,
		encKey:   encKey,
	}, nil
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &LoginResult{Message: "Authentication failed. User not found."}, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// Check lockout
	if u.LockedUntil != nil && time.Now().Before(*u.LockedUntil) {
		return nil, ErrAccountLocked
	}

	// Verify password
	if err := password.Verify(u.PasswordHash, req.Password); err != nil {
		s.recordFailedLogin(ctx, &u)
		return &LoginResult{Message: "Authentication failed. Incorrect password."}, nil
	}

	// Reset failure counters
	s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         time.Now(),
	})

	// The successful login leaves a notification trail for the user.
	if s.notifier != nil {
		msg := fmt.Sprintf("User %s authenticated successfully.", req.Email)
		if _, err := s.notifier.Enqueue(ctx, u.ID, msg); err != nil {
			return nil, fmt.Errorf("record login notification: %w", err)
		}
	}

	tokens, err := s.createSession(ctx, &u)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Success: true,
		Message: "Authentication successful.",
		Tokens:  tokens,
	}, nil
}

// ---------------------------------------------------------------------------
// RefreshTokens
// ---------------------------------------------------------------------------

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.paseto.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != pasetotoken.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	if claims.SessionID == nil {
		return nil, ErrInvalidToken
	}

	sessionKey := redisKeySession(claims.SessionID.String())

	// Check session exists
	if err := s.rdb.Get(ctx, sessionKey).Err(); err == redis.Nil {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	// Extend session TTL
	refreshTTL := time.Duration(s.cfg.Authentication.Paseto.RefreshTTLDays) * 24 * time.Hour
	s.rdb.Expire(ctx, sessionKey, refreshTTL)

	// Issue new access token only (refresh token stays the same until logout)
	accessTTL := time.Duration(s.cfg.Authentication.Paseto.AccessTTLMinutes) * time.Minute
	accessToken, err := s.paseto.IssueAccess(claims.UserID, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken, // unchanged
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.rdb.Del(ctx, redisKeySession(sessionID.String())).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		// Session already expired; not an error from the client's perspective
		slog.DebugContext(ctx, "logout: session not found in Redis (already expired)", "session_id", sessionID)
	}

	// Mark revoked in DB (audit, best-effort)
	err = s.db.WithContext(ctx).
		Model(&model.UserSession{}).
		Where("session_id = ?", sessionID.String()).
		Update("revoked_at", time.Now()).Error
	if err != nil {
		slog.WarnContext(ctx, "failed to mark session revoked", "session_id", sessionID, "error", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Phone verification
// ---------------------------------------------------------------------------

func (s *authService) RequestPhoneOTP(ctx context.Context, userID uint) error {
	phone, err := s.profilePhone(ctx, userID)
	if err != nil {
		return err
	}
	return s.sendOTP(ctx, phone)
}

func (s *authService) VerifyPhoneOTP(ctx context.Context, userID uint, code string) error {
	phone, err := s.profilePhone(ctx, userID)
	if err != nil {
		return err
	}

	// Get stored OTP hash
	otpHash, err := s.rdb.Get(ctx, redisKeyOTP(phone)).Result()
	if err == redis.Nil {
		return ErrOTPExpired
	}
	if err != nil {
		return fmt.Errorf("redis get otp: %w", err)
	}

	// Check attempt count
	attempts, _ := s.rdb.Get(ctx, redisKeyOTPAttempts(phone)).Int()
	if attempts >= maxOTPAttempts {
		return ErrOTPMaxAttempts
	}

	// Verify code
	if err := otp.Verify(otpHash, code); err != nil {
		s.rdb.Incr(ctx, redisKeyOTPAttempts(phone))
		return ErrOTPInvalid
	}

	// Clean up OTP keys
	s.rdb.Del(ctx, redisKeyOTP(phone), redisKeyOTPAttempts(phone))

	err = s.db.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("user_id = ?", userID).
		Update("phone_verified", true).Error
	if err != nil {
		return fmt.Errorf("update phone_verified: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// profilePhone loads the user's profile and decrypts the stored phone number.
func (s *authService) profilePhone(ctx context.Context, userID uint) (string, error) {
	var profile model.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoPhone
		}
		return "", fmt.Errorf("get profile: %w", err)
	}
	if profile.Phone == "" {
		return "", ErrNoPhone
	}

	phone, err := crypto.Decrypt(s.encKey, profile.Phone)
	if err != nil {
		return "", fmt.Errorf("decrypt phone: %w", err)
	}
	return phone, nil
}

func (s *authService) sendOTP(ctx context.Context, phone string) error {
	code, err := otp.GenerateDefault()
	if err != nil {
		return fmt.Errorf("generate OTP: %w", err)
	}

	otpTTL := time.Duration(s.cfg.Authentication.OTPTTLMinutes) * time.Minute
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}

	// Store hash
	if err := s.rdb.Set(ctx, redisKeyOTP(phone), otp.Hash(code), otpTTL).Err(); err != nil {
		return fmt.Errorf("store OTP: %w", err)
	}
	// Reset attempts
	s.rdb.Set(ctx, redisKeyOTPAttempts(phone), "0", otpTTL+5*time.Minute)

	// Send via SMS.ir
	templateID := s.cfg.SMS.SMSIR.TemplateID
	if err := s.sms.SendOTP(ctx, phone, templateID, code); err != nil {
		// Log but don't fail; an undelivered code expires on its own.
		slog.WarnContext(ctx, "failed to send OTP SMS", "phone", phone, "error", err)
	}

	return nil
}

func (s *authService) createSession(ctx context.Context, u *model.User) (*AuthTokens, error) {
	sessionID := uuid.Must(uuid.NewV7())

	refreshTTL := time.Duration(s.cfg.Authentication.Paseto.RefreshTTLDays) * 24 * time.Hour
	accessTTL := time.Duration(s.cfg.Authentication.Paseto.AccessTTLMinutes) * time.Minute

	// Store in Redis
	sessionKey := redisKeySession(sessionID.String())
	uid := strconv.FormatUint(uint64(u.ID), 10)
	if err := s.rdb.Set(ctx, sessionKey, uid, refreshTTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	// Issue tokens
	access, err := s.paseto.IssueAccess(u.ID, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.paseto.IssueRefresh(u.ID, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	// Persist session record to DB (audit, best-effort)
	session := model.UserSession{
		UserID:           u.ID,
		SessionID:        sessionID.String(),
		RefreshTokenHash: crypto.Hash(refresh),
		ExpiresAt:        time.Now().Add(refreshTTL),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		slog.WarnContext(ctx, "failed to persist session audit row", "session_id", sessionID, "error", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}

func (s *authService) recordFailedLogin(ctx context.Context, u *model.User) {
	attempts := u.FailedLoginAttempts + 1
	updates := map[string]any{"failed_login_attempts": attempts}
	if attempts >= maxLoginAttempts {
		updates["locked_until"] = time.Now().Add(accountLockMins * time.Minute)
	}
	s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", u.ID).Updates(updates)
}
