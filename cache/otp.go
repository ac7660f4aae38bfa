package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOTPNotFound        = errors.New("otp expired or was never requested")
	ErrOTPMismatch        = errors.New("otp does not match")
	ErrOTPTooManyAttempts = errors.New("too many otp attempts")
)

// OTPStore keeps one hashed, expiring code per phone number.
type OTPStore struct {
	client      *redis.Client
	ttl         time.Duration
	maxAttempts int
	cost        int
}

func NewOTPStore(client *redis.Client, ttl time.Duration, maxAttempts int) *OTPStore {
	return &OTPStore{
		client:      client,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		cost:        bcrypt.DefaultCost,
	}
}

// Save replaces any pending code for phone and resets its attempt counter.
func (s *OTPStore) Save(ctx context.Context, phone, code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, otpKey(phone), hash, s.ttl)
		p.Del(ctx, attemptsKey(phone))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save otp failed: %w", err)
	}
	return nil
}

// Verify consumes the code on success. Each call counts as an attempt; once
// the limit is passed the pending code is discarded.
func (s *OTPStore) Verify(ctx context.Context, phone, code string) error {
	hash, err := s.client.Get(ctx, otpKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get otp failed: %w", err)
	}

	var attempts *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		attempts = p.Incr(ctx, attemptsKey(phone))
		p.Expire(ctx, attemptsKey(phone), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis count attempt failed: %w", err)
	}
	if attempts.Val() > int64(s.maxAttempts) {
		s.client.Del(ctx, otpKey(phone))
		return ErrOTPTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(code)) != nil {
		return ErrOTPMismatch
	}

	if err := s.client.Del(ctx, otpKey(phone), attemptsKey(phone)).Err(); err != nil {
		return fmt.Errorf("redis consume otp failed: %w", err)
	}
	return nil
}

func otpKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}

func attemptsKey(phone string) string {
	return fmt.Sprintf("otp_attempts:%s", phone)
}
