package services

import (
	"context"
	"strings"

	"google.golang.org/api/idtoken"
)

// Identity is what a federated sign-in vouches for.
type Identity struct {
	Email   string
	Name    string
	Picture string
	Subject string
}

type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// GoogleVerifier checks Google ID tokens issued for ClientID.
type GoogleVerifier struct {
	ClientID string
}

func (g GoogleVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	payload, err := idtoken.Validate(ctx, token, g.ClientID)
	if err != nil {
		return Identity{}, err
	}
	identity := Identity{
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
		Subject: payload.Subject,
	}
	if identity.Email == "" {
		return Identity{}, BadRequest("No email in token")
	}
	return identity, nil
}

func claimString(claims map[string]interface{}, key string) string {
	value, _ := claims[key].(string)
	return strings.TrimSpace(value)
}

// AdminEmails answers whether an email belongs to an administrator.
type AdminEmails map[string]bool

func NewAdminEmails(emails []string) AdminEmails {
	set := AdminEmails{}
	for _, email := range emails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			set[email] = true
		}
	}
	return set
}

func (a AdminEmails) Contains(email string) bool {
	return a[strings.ToLower(strings.TrimSpace(email))]
}
