package http

import (
	"context"
	"errors"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// UserResponse is the public view of an account; the password hash never
// leaves the service layer.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Active    bool      `json:"active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user domain.User) UserResponse {
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Active:    user.Active,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
	}
}

// register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (r *Router) register(c *fiber.Ctx) error {
	if r.authService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "auth service unavailable")
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	user, err := r.authService.Register(ctx, req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		if isDomainError(err) {
			return serviceError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

// login godoc
// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Username or email plus password"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (r *Router) login(c *fiber.Ctx) error {
	if r.authService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "auth service unavailable")
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	user, token, err := r.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserResponse(user),
	})
}

// logout godoc
// @Summary Revoke the presented token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/logout [post]
func (r *Router) logout(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	if err := r.authService.Logout(ctx, currentToken(c)); err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"status": "logged out"})
}

// me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (r *Router) me(c *fiber.Ctx) error {
	return c.JSON(toUserResponse(currentUser(c)))
}

func isDomainError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidCredentials,
		domain.ErrUsernameTaken,
		domain.ErrEmailTaken,
		domain.ErrRoleExists,
		domain.ErrRoleInUse,
		domain.ErrTokenNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
