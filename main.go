package main

import "accountd/internal/app"

// @title           accountd API
// @version         1.0
// @description     User-account service: signup, signin, email verification and password reset with one-time codes.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
