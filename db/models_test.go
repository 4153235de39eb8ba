package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuelState(t *testing.T) {
	joiner, winner := int64(2), int64(1)

	open := Duel{ID: 1, CreatorID: 1}
	full := Duel{ID: 1, CreatorID: 1, JoinID: &joiner}
	resolved := Duel{ID: 1, CreatorID: 1, JoinID: &joiner, WinnerID: &winner}

	assert.Equal(t, DuelOpen, open.State())
	assert.Equal(t, DuelFull, full.State())
	assert.Equal(t, DuelResolved, resolved.State())
}

func TestDuelIsParticipant(t *testing.T) {
	joiner := int64(2)
	d := Duel{ID: 1, CreatorID: 1, JoinID: &joiner}

	assert.True(t, d.IsParticipant(1))
	assert.True(t, d.IsParticipant(2))
	assert.False(t, d.IsParticipant(3))
}

func TestUserHasPendingVerification(t *testing.T) {
	token := "digest"
	expire := time.Now()

	assert.True(t, (&User{VerificationToken: &token, VerificationExpire: &expire}).HasPendingVerification())
	assert.False(t, (&User{IsVerified: true}).HasPendingVerification())
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 6)
}
