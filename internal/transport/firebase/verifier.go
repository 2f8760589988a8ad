// Package firebase verifies Firebase Auth ID tokens.
package firebase

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// idTokenVerifier is the slice of auth.Client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier checks ID token signature, expiry, audience and issuer for one project.
type Verifier struct {
	client idTokenVerifier
}

// NewVerifier creates a Verifier for projectID. An empty projectID is detected
// from FIREBASE_CONFIG, GOOGLE_CLOUD_PROJECT or the default credentials.
// FIREBASE_AUTH_EMULATOR_HOST switches verification to the Auth emulator.
func NewVerifier(ctx context.Context, projectID string) (*Verifier, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &Verifier{client: client}, nil
}

// VerifyIDToken returns the uid the token was issued to.
func (v *Verifier) VerifyIDToken(ctx context.Context, token string) (string, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("verify: %w", err)
	}
	if t.UID == "" {
		return "", errors.New("verify: token has no uid")
	}
	return t.UID, nil
}
