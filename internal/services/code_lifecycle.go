package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"accountd/internal/models"
)

// Политика кодов (одинаковая для обоих слотов)
const (
	sendCooldown      = 30 * time.Second
	codeTTL           = 5 * time.Minute
	maxFailedAttempts = 3
	lockoutWindow     = 5 * time.Minute
)

// CodeLifecycle enforces the timing and attempt policy for one-time codes.
// It is slot-agnostic: the verification slot and the forgot-password slot
// follow identical rules, so one instance serves both. All mutations happen
// on the slot in memory; the caller persists the account afterwards.
type CodeLifecycle struct {
	secret []byte
}

func NewCodeLifecycle(codeSecret string) *CodeLifecycle {
	return &CodeLifecycle{secret: []byte(codeSecret)}
}

// RequestIssue reports whether a new code may be sent. While the 30-second
// cooldown since the last successful send is running it returns
// *ThrottledError with the ceiling of the remaining seconds.
func (m *CodeLifecycle) RequestIssue(slot *models.CodeSlot, now time.Time) error {
	if slot.LastSentAt == nil {
		return nil
	}
	end := slot.LastSentAt.Add(sendCooldown)
	if now.Before(end) {
		return &ThrottledError{SecondsRemaining: int(math.Ceil(end.Sub(now).Seconds()))}
	}
	return nil
}

// Issue stores the keyed hash of rawCode and stamps issuedAt/lastSentAt.
// Issuing a new code implicitly invalidates the previous one. The
// failed-attempt counter is left alone: attempt lockout and send cooldown
// are independent policies.
func (m *CodeLifecycle) Issue(slot *models.CodeSlot, rawCode string, now time.Time) {
	h := m.hash(rawCode)
	issued := now
	sent := now
	slot.CodeHash = &h
	slot.IssuedAt = &issued
	slot.LastSentAt = &sent
}

// CheckLockout reports whether the slot is locked after repeated failures.
// Inside the 5-minute window it returns *LockedError with the ceiling of
// the remaining minutes. Once the window has elapsed the counter is reset;
// cleared=true tells the caller the slot mutated and must be persisted.
func (m *CodeLifecycle) CheckLockout(slot *models.CodeSlot, now time.Time) (cleared bool, err error) {
	if slot.FailedAttempts < maxFailedAttempts || slot.LastFailedAt == nil {
		return false, nil
	}
	end := slot.LastFailedAt.Add(lockoutWindow)
	if now.Before(end) {
		return false, &LockedError{MinutesRemaining: int(math.Ceil(end.Sub(now).Minutes()))}
	}
	slot.FailedAttempts = 0
	return true, nil
}

// Verify checks rawCode against the outstanding code. Checks run in order:
// missing code, expiry, hash comparison. A mismatch increments the
// failed-attempt counter as a side effect; the caller persists it even
// though the call fails. Success consumes the code and resets the counter.
func (m *CodeLifecycle) Verify(slot *models.CodeSlot, rawCode string, now time.Time) error {
	if slot.CodeHash == nil || slot.IssuedAt == nil {
		return ErrNoCodeIssued
	}
	if now.Sub(*slot.IssuedAt) > codeTTL {
		return ErrCodeExpired
	}
	if !hmac.Equal([]byte(m.hash(rawCode)), []byte(*slot.CodeHash)) {
		slot.FailedAttempts++
		failed := now
		slot.LastFailedAt = &failed
		return ErrCodeMismatch
	}
	slot.CodeHash = nil
	slot.IssuedAt = nil
	slot.FailedAttempts = 0
	slot.LastFailedAt = nil
	return nil
}

// hash — HMAC-SHA256 с общим секретом, а не простой дайджест: без секрета
// код из утёкшего хранилища не восстановить.
func (m *CodeLifecycle) hash(rawCode string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(rawCode))
	return hex.EncodeToString(mac.Sum(nil))
}
