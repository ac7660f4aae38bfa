package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

// Identity is what a verified third-party ID token says about the caller.
type Identity struct {
	UID   string
	Phone string
	Email string
	Name  string
}

type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes Firebase from a credentials JSON blob or file.
func NewFirebaseVerifier(ctx context.Context, credsJSON, credsFile string) (*FirebaseVerifier, error) {
	var opt option.ClientOption
	if credsJSON != "" {
		opt = option.WithCredentialsJSON([]byte(credsJSON))
	} else {
		opt = option.WithCredentialsFile(credsFile)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("initializing Firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting Firebase Auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, err
	}
	id := &Identity{UID: token.UID}
	id.Phone, _ = token.Claims["phone_number"].(string)
	id.Email, _ = token.Claims["email"].(string)
	id.Name, _ = token.Claims["name"].(string)
	return id, nil
}
