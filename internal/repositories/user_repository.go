package repositories

import (
	"database/sql"
	"fmt"

	"accountd/internal/models"
)

// Slot names a code-slot column group on the users table. The two groups
// are structurally identical and never touch each other.
type Slot string

const (
	SlotVerification   Slot = "verification"
	SlotForgotPassword Slot = "forgot_password"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdatePassword(userID int, passwordHash string) error

	// Slot writes. Each call is a single UPDATE of one account.
	UpdateSlot(userID int, slot Slot, s *models.CodeSlot) error
	ConfirmVerification(userID int, s *models.CodeSlot) error
	ResetPassword(userID int, passwordHash string, s *models.CodeSlot) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, email, password_hash, verified, created_at,
	verification_code_hash, verification_issued_at, verification_last_sent_at,
	verification_failed_attempts, verification_last_failed_at,
	forgot_password_code_hash, forgot_password_issued_at, forgot_password_last_sent_at,
	forgot_password_failed_attempts, forgot_password_last_failed_at
`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (email, password_hash, verified)
		VALUES ($1, $2, FALSE)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) getOne(q string, arg interface{}) (*models.User, error) {
	u := &models.User{}
	var (
		vHash, fHash            sql.NullString
		vIssued, vSent, vFailed sql.NullTime
		fIssued, fSent, fFailed sql.NullTime
		vAttempts, fAttempts    sql.NullInt64
	)
	err := r.DB.QueryRow(q, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Verified, &u.CreatedAt,
		&vHash, &vIssued, &vSent, &vAttempts, &vFailed,
		&fHash, &fIssued, &fSent, &fAttempts, &fFailed,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	u.Verification = scanSlot(vHash, vIssued, vSent, vAttempts, vFailed)
	u.ForgotPassword = scanSlot(fHash, fIssued, fSent, fAttempts, fFailed)
	return u, nil
}

func scanSlot(hash sql.NullString, issued, sent sql.NullTime, attempts sql.NullInt64, failed sql.NullTime) models.CodeSlot {
	var s models.CodeSlot
	if hash.Valid {
		h := hash.String
		s.CodeHash = &h
	}
	if issued.Valid {
		t := issued.Time
		s.IssuedAt = &t
	}
	if sent.Valid {
		t := sent.Time
		s.LastSentAt = &t
	}
	if attempts.Valid {
		s.FailedAttempts = int(attempts.Int64)
	}
	if failed.Valid {
		t := failed.Time
		s.LastFailedAt = &t
	}
	return s
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1`
	if _, err := r.DB.Exec(q, userID, passwordHash); err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	return nil
}

// UpdateSlot writes one code-slot column group back. The slot value is one
// of the two Slot constants, never caller input.
func (r *userRepository) UpdateSlot(userID int, slot Slot, s *models.CodeSlot) error {
	q := fmt.Sprintf(`
		UPDATE users SET
			%[1]s_code_hash = $2,
			%[1]s_issued_at = $3,
			%[1]s_last_sent_at = $4,
			%[1]s_failed_attempts = $5,
			%[1]s_last_failed_at = $6
		WHERE id = $1
	`, slot)
	if _, err := r.DB.Exec(q, userID, s.CodeHash, s.IssuedAt, s.LastSentAt, s.FailedAttempts, s.LastFailedAt); err != nil {
		return fmt.Errorf("user update %s slot: %w", slot, err)
	}
	return nil
}

// ConfirmVerification marks the account verified and writes the consumed
// verification slot in the same statement.
func (r *userRepository) ConfirmVerification(userID int, s *models.CodeSlot) error {
	const q = `
		UPDATE users SET
			verified = TRUE,
			verification_code_hash = $2,
			verification_issued_at = $3,
			verification_last_sent_at = $4,
			verification_failed_attempts = $5,
			verification_last_failed_at = $6
		WHERE id = $1
	`
	if _, err := r.DB.Exec(q, userID, s.CodeHash, s.IssuedAt, s.LastSentAt, s.FailedAttempts, s.LastFailedAt); err != nil {
		return fmt.Errorf("user confirm verification: %w", err)
	}
	return nil
}

// ResetPassword replaces the password hash and writes the consumed
// forgot-password slot in the same statement.
func (r *userRepository) ResetPassword(userID int, passwordHash string, s *models.CodeSlot) error {
	const q = `
		UPDATE users SET
			password_hash = $2,
			forgot_password_code_hash = $3,
			forgot_password_issued_at = $4,
			forgot_password_last_sent_at = $5,
			forgot_password_failed_attempts = $6,
			forgot_password_last_failed_at = $7
		WHERE id = $1
	`
	if _, err := r.DB.Exec(q, userID, passwordHash, s.CodeHash, s.IssuedAt, s.LastSentAt, s.FailedAttempts, s.LastFailedAt); err != nil {
		return fmt.Errorf("user reset password: %w", err)
	}
	return nil
}
