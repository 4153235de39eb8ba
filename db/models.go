package db

import "time"

type User struct {
	ID                 int64      `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	IsVerified         bool       `json:"is_verified" db:"is_verified"`
	VerificationToken  *string    `json:"-" db:"verification_token"` // sha256 digest, never the raw token
	VerificationExpire *time.Time `json:"-" db:"verification_expire"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

// HasPendingVerification reports whether a verification token is outstanding.
func (u *User) HasPendingVerification() bool {
	return u.VerificationToken != nil && u.VerificationExpire != nil
}

type Statistics struct {
	UserID   int64 `json:"user_id" db:"user_id"`
	Games    int   `json:"games" db:"games"`
	GamesWon int   `json:"games_won" db:"games_won"`
	Duels    int   `json:"duels" db:"duels"`
	DuelsWon int   `json:"duels_won" db:"duels_won"`
}

type DuelState string

const (
	DuelOpen     DuelState = "open"
	DuelFull     DuelState = "full"
	DuelResolved DuelState = "resolved"
)

type Duel struct {
	ID        int64     `json:"id" db:"id"`
	CreatorID int64     `json:"creator_id" db:"creator_id"`
	JoinID    *int64    `json:"join_id" db:"join_id"`
	WinnerID  *int64    `json:"winner_id" db:"winner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (d *Duel) State() DuelState {
	switch {
	case d.WinnerID != nil:
		return DuelResolved
	case d.JoinID != nil:
		return DuelFull
	default:
		return DuelOpen
	}
}

// IsParticipant reports whether userID created or joined the duel.
func (d *Duel) IsParticipant(userID int64) bool {
	return d.CreatorID == userID || (d.JoinID != nil && *d.JoinID == userID)
}
