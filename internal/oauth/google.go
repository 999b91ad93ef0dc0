package oauth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ProviderGoogle is the provider claim carried by tokens minted after a Google login.
const ProviderGoogle = "google"

var ErrEmailMissing = errors.New("email not present in id token")

type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google ID tokens against the configured OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Provider() string {
	return ProviderGoogle
}

func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, idTok string) (*GoogleProfile, error) {
	if v.clientID == "" {
		return nil, errors.New("google client id not configured")
	}
	payload, err := v.validate(ctx, idTok, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate id token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrEmailMissing
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("email not verified")
	}
	name, _ := payload.Claims["name"].(string)

	return &GoogleProfile{Subject: payload.Subject, Email: email, Name: name}, nil
}
