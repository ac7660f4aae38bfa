package auth

import (
	"context"
	"log"
)

// SMSSender delivers a one-time code to a phone number.
type SMSSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// LogSender prints codes instead of sending them. Development only.
type LogSender struct{}

func (LogSender) SendOTP(_ context.Context, phone, code string) error {
	log.Printf("📱 OTP for %s: %s", phone, code)
	return nil
}
