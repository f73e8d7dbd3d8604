package auth

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the full HTTP surface under /api/v1. The guard
// factory is Authenticate bound to the app's token service; it is taken
// as a parameter so tests can swap it.
func RegisterRoutes(app fiber.Router, authCtrl *AuthController, usersCtrl *UsersController, guard func(roles ...UserRole) fiber.Handler) {
	api := app.Group("/api/v1")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", authCtrl.Login)
	authRoutes.Post("/signup", authCtrl.Signup)
	authRoutes.Post("/refresh-token", authCtrl.Refresh)
	authRoutes.Post("/reset-password", authCtrl.ResetPassword)
	authRoutes.Put("/forgot-password", authCtrl.ForgotPassword)
	authRoutes.Put("/verify-user", guard(), authCtrl.Verify)

	userRoutes := api.Group("/user")
	userRoutes.Get("/", guard(), usersCtrl.List)
	userRoutes.Get("/:id", guard(RoleAdmin, RoleUser), usersCtrl.Show)
	userRoutes.Put("/:id", guard(RoleAdmin, RoleUser), usersCtrl.Update)
	userRoutes.Delete("/:id", guard(RoleAdmin, RoleUser), usersCtrl.Delete)
}
