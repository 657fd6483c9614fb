package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-sync/internal/application/dto"
	"github.com/jhoicas/Inventario-sync/internal/application/inventory"
	"github.com/jhoicas/Inventario-sync/internal/application/validation"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
)

// AuthHandler maneja registro, login y logout de la sesión.
type AuthHandler struct {
	ctrl *inventory.Controller
	val  *validation.Validator
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(ctrl *inventory.Controller, val *validation.Validator) *AuthHandler {
	return &AuthHandler{ctrl: ctrl, val: val}
}

// Register godoc
// @Summary      Registrar usuario e iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password"
// @Success      201   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.val.Struct(in); err != nil {
		return respondError(c, err)
	}
	id, err := h.ctrl.Register(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLoginResponse(id))
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.val.Struct(in); err != nil {
		return respondError(c, err)
	}
	id, err := h.ctrl.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLoginResponse(id))
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Security     Bearer
// @Success      204
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.ctrl.Logout(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toLoginResponse(id *entity.Identity) dto.LoginResponse {
	return dto.LoginResponse{
		Token: id.Token,
		User:  dto.UserResponse{ID: id.ID, Email: id.Email},
	}
}
