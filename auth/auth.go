package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/devclub-nstru/tryyel-backend/apperr"
	"github.com/devclub-nstru/tryyel-backend/cache"
	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const userIDKey = "user_id"

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// SetUserID stores the authenticated user on the request context.
func SetUserID(c *gin.Context, id string) { c.Set(userIDKey, id) }

// UserID returns the authenticated user, or "" on public routes.
func UserID(c *gin.Context) string { return c.GetString(userIDKey) }

// OTPStore keeps pending one-time codes with an expiry.
type OTPStore interface {
	Save(ctx context.Context, phone, code string) error
	Verify(ctx context.Context, phone, code string) error
}

type Service struct {
	db       *gorm.DB
	otp      OTPStore
	sms      SMSSender
	verifier IDTokenVerifier
	secret   string
	ttl      time.Duration
}

// NewService wires the login flows. verifier may be nil when Firebase is not configured.
func NewService(db *gorm.DB, otp OTPStore, sms SMSSender, verifier IDTokenVerifier, secret string, ttl time.Duration) *Service {
	return &Service{db: db, otp: otp, sms: sms, verifier: verifier, secret: secret, ttl: ttl}
}

type Session struct {
	User   models.User `json:"user"`
	Token  string      `json:"token"`
	Exists bool        `json:"exists"`
}

func (s *Service) SendOTP(ctx context.Context, mobile string) error {
	if !mobilePattern.MatchString(mobile) {
		return apperr.Validation("a valid mobileNumber is required")
	}
	code, err := generateCode()
	if err != nil {
		return apperr.Internal(err, "auth.send_otp")
	}
	if err := s.otp.Save(ctx, mobile, code); err != nil {
		return apperr.Internal(err, "auth.send_otp")
	}
	if err := s.sms.SendOTP(ctx, mobile, code); err != nil {
		return apperr.Internal(err, "auth.send_otp")
	}
	return nil
}

// VerifyOTP consumes the code and signs the user in, creating the account on first login.
func (s *Service) VerifyOTP(ctx context.Context, mobile, code string) (*Session, error) {
	if !mobilePattern.MatchString(mobile) || code == "" {
		return nil, apperr.Validation("mobileNumber and otp are required")
	}

	if err := s.otp.Verify(ctx, mobile, code); err != nil {
		switch {
		case errors.Is(err, cache.ErrOTPNotFound):
			return nil, apperr.Authentication("OTP expired or not requested")
		case errors.Is(err, cache.ErrOTPMismatch):
			return nil, apperr.Authentication("Invalid OTP")
		case errors.Is(err, cache.ErrOTPTooManyAttempts):
			return nil, apperr.Authentication("Too many attempts, request a new OTP")
		}
		return nil, apperr.Internal(err, "auth.verify_otp")
	}

	user, existed, err := s.upsertByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	return s.session(user, existed)
}

// CheckUser signs in with a Firebase phone-auth ID token.
func (s *Service) CheckUser(ctx context.Context, idToken string) (*Session, error) {
	if s.verifier == nil {
		return nil, apperr.NotFound("firebase login is not enabled")
	}
	if idToken == "" {
		return nil, apperr.Validation("idToken is required")
	}
	id, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, apperr.Authentication("Invalid ID token")
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("id = ?", id.UID).First(&user).Error
	if err == nil {
		return s.session(user, true)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err, "auth.check_user")
	}

	user = models.User{ID: id.UID, Name: id.Name, Email: id.Email}
	if id.Phone != "" {
		phone := id.Phone
		user.MobileNumber = &phone
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Conflict("an account with this mobile number already exists")
		}
		return nil, apperr.Internal(err, "auth.check_user")
	}
	return s.session(user, false)
}

func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperr.From(err, "auth.me")
	}
	return &user, nil
}

func (s *Service) upsertByMobile(ctx context.Context, mobile string) (models.User, bool, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("mobile_number = ?", mobile).First(&user).Error
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, false, apperr.Internal(err, "auth.upsert_user")
	}

	user = models.User{ID: uuid.NewString(), MobileNumber: &mobile}
	if err := db.Create(&user).Error; err != nil {
		if !apperr.IsDuplicate(err) {
			return user, false, apperr.Internal(err, "auth.upsert_user")
		}
		// a concurrent login created it first
		if err := db.Where("mobile_number = ?", mobile).First(&user).Error; err != nil {
			return user, false, apperr.Internal(err, "auth.upsert_user")
		}
		return user, true, nil
	}
	return user, false, nil
}

func (s *Service) session(user models.User, existed bool) (*Session, error) {
	token, err := IssueToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return nil, apperr.Internal(err, "auth.issue_token")
	}
	return &Session{User: user, Token: token, Exists: existed}, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
