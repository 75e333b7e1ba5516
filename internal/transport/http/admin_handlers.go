package http

import (
	"context"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/flaviojulio/ir-app/internal/usecase"
)

type UserUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
	Active   *bool   `json:"active"`
}

type RoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RoleResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// listUsers godoc
// @Summary List accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} map[string]string
// @Router /users [get]
func (r *Router) listUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	users, err := r.authService.ListUsers(ctx)
	if err != nil {
		return serviceError(err)
	}

	out := make([]UserResponse, len(users))
	for i, user := range users {
		out[i] = toUserResponse(user)
	}
	return c.JSON(out)
}

// getUser godoc
// @Summary Fetch one account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]string
// @Router /users/{id} [get]
func (r *Router) getUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	user, err := r.authService.GetUser(ctx, id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(toUserResponse(user))
}

// updateUser godoc
// @Summary Update an account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UserUpdateRequest true "Fields to change; omitted fields keep their value"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id} [put]
func (r *Router) updateUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	user, err := r.authService.UpdateUser(ctx, id, usecase.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Active:   req.Active,
	})
	if err != nil {
		if isDomainError(err) {
			return serviceError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(toUserResponse(user))
}

// deleteUser godoc
// @Summary Delete an account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id} [delete]
func (r *Router) deleteUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	if err := r.authService.DeleteUser(ctx, id); err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// addRole godoc
// @Summary Grant a role to an account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param role path string true "Role name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id}/roles/{role} [post]
func (r *Router) addRole(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	role := c.Params("role")
	if role == "" {
		return fiber.NewError(fiber.StatusBadRequest, "role required")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	if err := r.authService.AddRole(ctx, id, role); err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"status": "role granted"})
}

// removeRole godoc
// @Summary Revoke a role from an account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param role path string true "Role name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id}/roles/{role} [delete]
func (r *Router) removeRole(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	role := c.Params("role")
	if role == "" {
		return fiber.NewError(fiber.StatusBadRequest, "role required")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	if err := r.authService.RemoveRole(ctx, id, role); err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"status": "role revoked"})
}

// listRoles godoc
// @Summary List roles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RoleResponse
// @Router /roles [get]
func (r *Router) listRoles(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	roles, err := r.authService.ListRoles(ctx)
	if err != nil {
		return serviceError(err)
	}

	out := make([]RoleResponse, len(roles))
	for i, role := range roles {
		out[i] = RoleResponse{ID: role.ID, Name: role.Name, Description: role.Description}
	}
	return c.JSON(out)
}

// createRole godoc
// @Summary Create a role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RoleRequest true "Role name and description"
// @Success 201 {object} RoleResponse
// @Failure 409 {object} map[string]string
// @Router /roles [post]
func (r *Router) createRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	role, err := r.authService.CreateRole(ctx, req.Name, req.Description)
	if err != nil {
		if isDomainError(err) {
			return serviceError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(RoleResponse{ID: role.ID, Name: role.Name, Description: role.Description})
}

// deleteRole godoc
// @Summary Delete a role
// @Description Built-in roles and roles still assigned to users are refused.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /roles/{id} [delete]
func (r *Router) deleteRole(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	if err := r.authService.DeleteRole(ctx, id); err != nil {
		if isDomainError(err) {
			return serviceError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// reset godoc
// @Summary Wipe all operations and derived data, every user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /reset [delete]
func (r *Router) reset(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 30*time.Second)
	defer cancel()

	if err := r.ledgerService.Reset(ctx); err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"status": "reset"})
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
