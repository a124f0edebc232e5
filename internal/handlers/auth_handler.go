package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"accountd/internal/models"
	"accountd/internal/services"
)

const cookieMaxAge = int(8 * time.Hour / time.Second)

type AuthHandler struct {
	accounts      services.AccountService
	secureCookies bool
}

func NewAuthHandler(accounts services.AccountService, secureCookies bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, secureCookies: secureCookies}
}

// @Summary      Sign up
// @Description  Creates an unverified account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupRequest  true  "Credentials"
// @Success      201     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]interface{}
// @Failure      401     {object}  map[string]interface{}
// @Router       /signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(err.Error()))
		return
	}

	user, err := h.accounts.Signup(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "your account has been created successfully",
		"result":  user, // PasswordHash помечен json:"-", наружу не уйдет
	})
}

// @Summary      Sign in
// @Description  Issues an 8-hour session token as a cookie and in the body
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signin  body      models.SigninRequest  true  "Credentials"
// @Success      200     {object}  map[string]interface{}
// @Failure      401     {object}  map[string]interface{}
// @Router       /signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req models.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, fail(err.Error()))
		return
	}

	token, _, err := h.accounts.Signin(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie("Authorization", "Bearer "+token, cookieMaxAge, "/", "", h.secureCookies, h.secureCookies)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"message": "logged in successfully",
	})
}

// @Summary      Sign out
// @Description  Clears the session cookie; tokens are stateless otherwise
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /signout [post]
func (h *AuthHandler) Signout(c *gin.Context) {
	c.SetCookie("Authorization", "", -1, "/", "", h.secureCookies, h.secureCookies)
	c.JSON(http.StatusOK, ok("logged out successfully"))
}

// @Summary      Send verification code
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        request  body      models.SendCodeRequest  true  "Account email"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Router       /send-verification-code [post]
func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	var req models.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(err.Error()))
		return
	}
	if err := h.accounts.RequestVerification(req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok("code sent"))
}

// @Summary      Verify verification code
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        request  body      models.VerifyCodeRequest  true  "Email and code"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Router       /verify-verification-code [post]
func (h *AuthHandler) VerifyVerificationCode(c *gin.Context) {
	var req models.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(err.Error()))
		return
	}
	if err := h.accounts.VerifyCode(req.Email, req.ProvidedCode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok("your account has been verified"))
}

// @Summary      Change password
// @Description  Requires an authenticated, verified session
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      models.ChangePasswordRequest  true  "Old and new password"
// @Success      200      {object}  map[string]interface{}
// @Failure      401      {object}  map[string]interface{}
// @Router       /change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, okID := getIntFromCtx(c, "user_id")
	if !okID {
		c.JSON(http.StatusUnauthorized, fail("missing or invalid Authorization header"))
		return
	}
	if !getBoolFromCtx(c, "verified") {
		respondError(c, services.ErrNotVerified)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, fail(err.Error()))
		return
	}
	if err := h.accounts.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		log.Printf("[auth][change-password] user_id=%d: %v", userID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok("password updated"))
}

// @Summary      Send forgot-password code
// @Tags         PasswordReset
// @Accept       json
// @Produce      json
// @Param        request  body      models.SendCodeRequest  true  "Account email"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Router       /send-forgot-password-code [post]
func (h *AuthHandler) SendForgotPasswordCode(c *gin.Context) {
	var req models.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(err.Error()))
		return
	}
	if err := h.accounts.RequestPasswordReset(req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok("password reset code sent"))
}

// @Summary      Verify forgot-password code
// @Description  Replaces the password when the code is accepted
// @Tags         PasswordReset
// @Accept       json
// @Produce      json
// @Param        request  body      models.VerifyForgotPasswordRequest  true  "Email, code and new password"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Router       /verify-forgot-password-code [post]
func (h *AuthHandler) VerifyForgotPasswordCode(c *gin.Context) {
	var req models.VerifyForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(err.Error()))
		return
	}
	if err := h.accounts.VerifyPasswordResetCode(req.Email, req.ProvidedCode, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok("password updated successfully"))
}
