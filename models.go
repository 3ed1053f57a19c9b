package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DigestKind names one of the stored token digests. Operations that verify a
// token pass the kind explicitly; there is no reflective field lookup.
type DigestKind string

const (
	// DigestRemember backs persistent "remember me" cookies
	DigestRemember DigestKind = "remember"
	// DigestActivation backs the one-shot account activation link
	DigestActivation DigestKind = "activation"
	// DigestReset backs the password reset link
	DigestReset DigestKind = "reset"
)

// ResetTokenTTL is the window in which a password reset token is honored.
const ResetTokenTTL = 2 * time.Hour

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name             string     `bun:"name,notnull" json:"name,omitempty"`
	Email            string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordDigest   string     `bun:"password_digest,notnull" json:"-"`
	RememberDigest   string     `bun:"remember_digest,nullzero" json:"-"`
	ActivationDigest string     `bun:"activation_digest,nullzero" json:"-"`
	Activated        bool       `bun:"activated,notnull,default:false" json:"activated,omitempty"`
	ActivatedAt      *time.Time `bun:"activated_at,nullzero" json:"activated_at,omitempty"`
	ResetDigest      string     `bun:"reset_digest,nullzero" json:"-"`
	ResetSentAt      *time.Time `bun:"reset_sent_at,nullzero" json:"reset_sent_at,omitempty"`
	CreatedAt        *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt        *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`

	// Plaintext secrets live only on the request that minted them.
	Password        string `bun:"-" json:"-"`
	RememberToken   string `bun:"-" json:"-"`
	ActivationToken string `bun:"-" json:"-"`
	ResetToken      string `bun:"-" json:"-"`
}

// Digest returns the stored digest for kind via the fixed kind table.
// Empty string means no token was ever issued, or it was revoked.
func (u *User) Digest(kind DigestKind) string {
	switch kind {
	case DigestRemember:
		return u.RememberDigest
	case DigestActivation:
		return u.ActivationDigest
	case DigestReset:
		return u.ResetDigest
	}
	return ""
}

// Authenticated reports whether token matches the stored digest for kind.
// An absent digest denies for any token.
func (u *User) Authenticated(kind DigestKind, token string) bool {
	if u == nil {
		return false
	}
	return DigestMatches(u.Digest(kind), token)
}

// PasswordResetExpired reports whether the reset window elapsed at now.
// A user without a pending reset reads as expired.
func (u *User) PasswordResetExpired(now time.Time) bool {
	if u.ResetSentAt == nil {
		return true
	}
	return now.Sub(*u.ResetSentAt) > ResetTokenTTL
}

// Relationship is one directed follow edge in the social graph. The pair is
// unique; re-following is a no-op at the repository layer.
type Relationship struct {
	bun.BaseModel `bun:"table:relationships,alias:rel"`

	ID         uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FollowerID uuid.UUID  `bun:"follower_id,notnull,type:uuid" json:"follower_id,omitempty"`
	FollowedID uuid.UUID  `bun:"followed_id,notnull,type:uuid" json:"followed_id,omitempty"`
	CreatedAt  *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// MicropostMaxLength caps status post content.
const MicropostMaxLength = 140

// Micropost is a short status post authored by a user.
type Micropost struct {
	bun.BaseModel `bun:"table:microposts,alias:mp"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User      *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Content   string     `bun:"content,notnull" json:"content,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
