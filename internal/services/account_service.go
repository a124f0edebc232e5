package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"accountd/internal/models"
	"accountd/internal/repositories"
	"accountd/internal/utils"
)

// AccountService sequences the signup/signin/verification/reset flows,
// delegating every timing and attempt decision to CodeLifecycle. Each
// mutating step ends with a single repository write of the account.
type AccountService interface {
	Signup(email, password string) (*models.User, error)
	Signin(email, password string) (string, *models.User, error)
	RequestVerification(email string) error
	VerifyCode(email, providedCode string) error
	RequestPasswordReset(email string) error
	VerifyPasswordResetCode(email, providedCode, newPassword string) error
	ChangePassword(userID int, oldPassword, newPassword string) error
}

type accountService struct {
	repo   repositories.UserRepository
	emails EmailService
	auth   AuthService
	codes  *CodeLifecycle
}

func NewAccountService(repo repositories.UserRepository, emails EmailService, auth AuthService, codes *CodeLifecycle) AccountService {
	return &accountService{
		repo:   repo,
		emails: emails,
		auth:   auth,
		codes:  codes,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// lookup — общий поиск по email; nil пользователь => ErrUserNotFound.
func (s *accountService) lookup(email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *accountService) Signup(email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, PasswordHash: hash}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	log.Printf("[account][signup] created user_id=%d", user.ID)
	return user, nil
}

// Signin issues the session token. Verification is deliberately not
// required for signin; an unverified user may log in with the right
// password.
func (s *accountService) Signin(email, password string) (string, *models.User, error) {
	user, err := s.repo.GetByEmail(normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if user == nil || !s.auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.auth.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	log.Printf("[account][signin] user_id=%d verified=%t", user.ID, user.Verified)
	return token, user, nil
}

func (s *accountService) RequestVerification(email string) error {
	user, err := s.lookup(email)
	if err != nil {
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}
	return s.sendCode(user, repositories.SlotVerification, &user.Verification, s.emails.SendVerificationCode)
}

func (s *accountService) RequestPasswordReset(email string) error {
	user, err := s.lookup(email)
	if err != nil {
		return err
	}
	// reset is reachable without prior verification
	return s.sendCode(user, repositories.SlotForgotPassword, &user.ForgotPassword, s.emails.SendPasswordResetCode)
}

// sendCode is the shared send path for both slots: throttle check, fresh
// code, dispatch, and only then Issue + persist. A dispatch failure leaves
// the slot untouched.
func (s *accountService) sendCode(user *models.User, slotName repositories.Slot, slot *models.CodeSlot, send func(email, code string) error) error {
	now := time.Now()
	if err := s.codes.RequestIssue(slot, now); err != nil {
		return err
	}
	code, err := utils.GenerateCode()
	if err != nil {
		return err
	}
	if err := send(user.Email, code); err != nil {
		log.Printf("[account][%s] dispatch failed user_id=%d: %v", slotName, user.ID, err)
		return ErrDeliveryFailed
	}
	s.codes.Issue(slot, code, now)
	if err := s.repo.UpdateSlot(user.ID, slotName, slot); err != nil {
		return err
	}
	log.Printf("[account][%s] code sent user_id=%d", slotName, user.ID)
	return nil
}

func (s *accountService) VerifyCode(email, providedCode string) error {
	user, err := s.lookup(email)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := s.checkLockout(user, repositories.SlotVerification, &user.Verification, now); err != nil {
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}
	if err := s.codes.Verify(&user.Verification, providedCode, now); err != nil {
		return s.persistRejection(user, repositories.SlotVerification, &user.Verification, err)
	}
	if err := s.repo.ConfirmVerification(user.ID, &user.Verification); err != nil {
		return err
	}
	log.Printf("[account][verification] user_id=%d verified", user.ID)
	return nil
}

func (s *accountService) VerifyPasswordResetCode(email, providedCode, newPassword string) error {
	user, err := s.lookup(email)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := s.checkLockout(user, repositories.SlotForgotPassword, &user.ForgotPassword, now); err != nil {
		return err
	}
	if err := s.codes.Verify(&user.ForgotPassword, providedCode, now); err != nil {
		return s.persistRejection(user, repositories.SlotForgotPassword, &user.ForgotPassword, err)
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.ResetPassword(user.ID, hash, &user.ForgotPassword); err != nil {
		return err
	}
	log.Printf("[account][forgot_password] user_id=%d password replaced", user.ID)
	return nil
}

// checkLockout delegates to CodeLifecycle and persists the counter reset
// when the lockout window has elapsed.
func (s *accountService) checkLockout(user *models.User, slotName repositories.Slot, slot *models.CodeSlot, now time.Time) error {
	cleared, err := s.codes.CheckLockout(slot, now)
	if cleared {
		if uerr := s.repo.UpdateSlot(user.ID, slotName, slot); uerr != nil {
			return uerr
		}
	}
	return err
}

// persistRejection stores the mismatch side effects (attempt counter) and
// still reports the rejection to the caller, so lockout accumulates across
// retries.
func (s *accountService) persistRejection(user *models.User, slotName repositories.Slot, slot *models.CodeSlot, verifyErr error) error {
	if errors.Is(verifyErr, ErrCodeMismatch) {
		if uerr := s.repo.UpdateSlot(user.ID, slotName, slot); uerr != nil {
			return uerr
		}
	}
	return verifyErr
}

func (s *accountService) ChangePassword(userID int, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !s.auth.CheckPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(user.ID, hash); err != nil {
		return err
	}
	log.Printf("[account][change_password] user_id=%d", user.ID)
	return nil
}
