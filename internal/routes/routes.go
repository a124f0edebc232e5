package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"accountd/internal/handlers"
	"accountd/internal/middleware"
)

func SetupRoutes(r *gin.Engine, authHandler *handlers.AuthHandler, tokenSecret []byte) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- public
	r.POST("/signup", authHandler.Signup)
	r.POST("/signin", authHandler.Signin)
	r.POST("/signout", authHandler.Signout)
	r.POST("/send-verification-code", authHandler.SendVerificationCode)
	r.POST("/verify-verification-code", authHandler.VerifyVerificationCode)
	r.POST("/send-forgot-password-code", authHandler.SendForgotPasswordCode)
	r.POST("/verify-forgot-password-code", authHandler.VerifyForgotPasswordCode)

	// ---- protected
	protected := r.Group("/", middleware.AuthMiddleware(tokenSecret))
	{
		protected.POST("/change-password", authHandler.ChangePassword)
	}

	return r
}
