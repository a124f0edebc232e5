package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountd/internal/middleware"
	"accountd/internal/models"
	"accountd/internal/services"
)

// stubAccounts returns canned results so the tests exercise only the
// transport boundary: binding, status mapping and the response envelope.
type stubAccounts struct {
	signupUser  *models.User
	signinToken string
	err         error
}

func (s *stubAccounts) Signup(email, password string) (*models.User, error) {
	return s.signupUser, s.err
}

func (s *stubAccounts) Signin(email, password string) (string, *models.User, error) {
	return s.signinToken, s.signupUser, s.err
}

func (s *stubAccounts) RequestVerification(email string) error { return s.err }

func (s *stubAccounts) VerifyCode(email, code string) error { return s.err }

func (s *stubAccounts) RequestPasswordReset(email string) error { return s.err }

func (s *stubAccounts) VerifyPasswordResetCode(email, code, pw string) error { return s.err }

func (s *stubAccounts) ChangePassword(id int, oldPw, newPw string) error { return s.err }

const testTokenSecret = "test-token-secret"

func newTestRouter(stub *stubAccounts) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(stub, false)
	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/signin", h.Signin)
	r.POST("/signout", h.Signout)
	r.POST("/send-verification-code", h.SendVerificationCode)
	r.POST("/verify-verification-code", h.VerifyVerificationCode)
	r.POST("/send-forgot-password-code", h.SendForgotPasswordCode)
	r.POST("/verify-forgot-password-code", h.VerifyForgotPasswordCode)

	protected := r.Group("/", middleware.AuthMiddleware([]byte(testTokenSecret)))
	protected.POST("/change-password", h.ChangePassword)
	return r
}

func doJSON(r *gin.Engine, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestSignupValidation(t *testing.T) {
	r := newTestRouter(&stubAccounts{})

	w, resp := doJSON(r, http.MethodPost, "/signup", `{"email":"not-an-email","password":"secret123"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])

	// password below the minimum length
	w, _ = doJSON(r, http.MethodPost, "/signup", `{"email":"a@b.co","password":"short"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupSuccessAndConflict(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.co", PasswordHash: "$2a$12$x"}
	r := newTestRouter(&stubAccounts{signupUser: user})

	w, resp := doJSON(r, http.MethodPost, "/signup", `{"email":"a@b.co","password":"secret123"}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, resp["success"])
	result := resp["result"].(map[string]interface{})
	assert.Equal(t, "a@b.co", result["email"])
	// the hash is never serialized
	assert.NotContains(t, w.Body.String(), "$2a$12$x")

	r = newTestRouter(&stubAccounts{err: services.ErrEmailTaken})
	w, resp = doJSON(r, http.MethodPost, "/signup", `{"email":"a@b.co","password":"secret123"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestSigninSetsCookie(t *testing.T) {
	r := newTestRouter(&stubAccounts{signinToken: "tok123"})

	w, resp := doJSON(r, http.MethodPost, "/signin", `{"email":"a@b.co","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok123", resp["token"])

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "Authorization=")
	assert.Contains(t, cookie, "Bearer")
}

func TestSigninBadCredentials(t *testing.T) {
	r := newTestRouter(&stubAccounts{err: services.ErrInvalidCredentials})
	w, resp := doJSON(r, http.MethodPost, "/signin", `{"email":"a@b.co","password":"secret123"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestSignoutClearsCookie(t *testing.T) {
	r := newTestRouter(&stubAccounts{})
	w, resp := doJSON(r, http.MethodPost, "/signout", ``, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestSendCodeThrottled(t *testing.T) {
	r := newTestRouter(&stubAccounts{err: &services.ThrottledError{SecondsRemaining: 17}})
	w, resp := doJSON(r, http.MethodPost, "/send-verification-code", `{"email":"a@b.co"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, resp["message"], "17 seconds")
}

func TestVerifyCodeLocked(t *testing.T) {
	r := newTestRouter(&stubAccounts{err: &services.LockedError{MinutesRemaining: 4}})
	w, resp := doJSON(r, http.MethodPost, "/verify-verification-code", `{"email":"a@b.co","providedCode":"123456"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, resp["message"], "4 minute(s)")
}

func TestVerifyCodeRejectionStatuses(t *testing.T) {
	for _, err := range []error{services.ErrNoCodeIssued, services.ErrCodeExpired, services.ErrCodeMismatch} {
		r := newTestRouter(&stubAccounts{err: err})
		w, resp := doJSON(r, http.MethodPost, "/verify-verification-code", `{"email":"a@b.co","providedCode":"123456"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, err.Error(), resp["message"])
	}
}

func TestSendCodeUnknownUser(t *testing.T) {
	r := newTestRouter(&stubAccounts{err: services.ErrUserNotFound})
	w, _ := doJSON(r, http.MethodPost, "/send-forgot-password-code", `{"email":"a@b.co"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangePasswordAuth(t *testing.T) {
	r := newTestRouter(&stubAccounts{})
	body := `{"oldPassword":"secret123","newPassword":"newsecret99"}`

	// no token
	w, _ := doJSON(r, http.MethodPost, "/change-password", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	auth := services.NewAuthService(testTokenSecret)

	// token for an unverified account
	token, err := auth.GenerateToken(&models.User{ID: 1, Email: "a@b.co", Verified: false})
	require.NoError(t, err)
	w, resp := doJSON(r, http.MethodPost, "/change-password", body, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, resp["message"], "verified")

	// verified token via the Authorization cookie, как после signin
	token, err = auth.GenerateToken(&models.User{ID: 1, Email: "a@b.co", Verified: true})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/change-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "Authorization", Value: "Bearer " + token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
