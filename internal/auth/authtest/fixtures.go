package authtest

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"diary-backend/internal/models"
)

// NewMember stores a member with a bcrypt hash of password. MinCost keeps
// tests fast.
func NewMember(t testing.TB, store *MemberStore, username, nickname, password, role string) *models.Member {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	member := &models.Member{
		Username:     username,
		Nickname:     nickname,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := store.Create(context.Background(), member); err != nil {
		t.Fatalf("create member: %v", err)
	}
	return member
}

// DiscardLogger returns an entry that writes nowhere.
func DiscardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
