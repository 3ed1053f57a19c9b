package accounts_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	user := &accounts.User{ID: uuid.New(), Name: "Example User"}

	ctx := accounts.WithContext(context.Background(), user)

	got, ok := accounts.FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, user, got)
}

func TestUserContextMissing(t *testing.T) {
	got, ok := accounts.FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}
