// Package auth implements the two credential mechanisms of articleKeeper:
// verification of the admin password against its bcrypt hash and issuing and
// validating the signed session tokens presented on admin requests.
package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/0x0BSoD/articleKeeper/internal/model"
)

// Credentials verifies login attempts against the single configured admin
// identity. The check is pure: no lockout, no rate limiting, no state.
type Credentials struct {
	admin model.AdminUser
}

func NewCredentials(admin model.AdminUser) *Credentials {
	return &Credentials{admin: admin}
}

// Verify reports whether userID and password match the configured admin.
// It fails closed: missing configuration, an unknown user id or a hash
// mismatch all deny access.
func (c *Credentials) Verify(userID, password string) bool {
	if c.admin.UserID == "" || c.admin.PasswordHash == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(userID), []byte(c.admin.UserID)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.admin.PasswordHash), []byte(password)) == nil
}
