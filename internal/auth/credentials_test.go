package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/0x0BSoD/articleKeeper/internal/auth"
	"github.com/0x0BSoD/articleKeeper/internal/model"
)

func TestVerify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	creds := auth.NewCredentials(model.AdminUser{
		UserID:       "admin",
		PasswordHash: string(hash),
	})

	assert.True(t, creds.Verify("admin", "s3cret"))
	assert.False(t, creds.Verify("admin", "wrong"))
	assert.False(t, creds.Verify("someone-else", "s3cret"))
	assert.False(t, creds.Verify("", ""))
}

func TestVerifyFailsClosedWithoutConfiguration(t *testing.T) {
	creds := auth.NewCredentials(model.AdminUser{})
	assert.False(t, creds.Verify("admin", "s3cret"))
}

func TestVerifyFailsClosedOnGarbageHash(t *testing.T) {
	creds := auth.NewCredentials(model.AdminUser{
		UserID:       "admin",
		PasswordHash: "not-a-bcrypt-hash",
	})
	assert.False(t, creds.Verify("admin", "s3cret"))
}
