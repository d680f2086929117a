package handlers

import (
	"errors"
	"strings"

	"pastehub/pkg/models"
	"pastehub/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth services.AuthService
}

func NewAuth(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email, name and password are required"})
	}

	resp, err := h.auth.Register(req)
	if errors.Is(err, services.ErrEmailTaken) {
		return c.Status(400).JSON(fiber.Map{"error": "Email already registered"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.Status(201).JSON(resp)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	resp, err := h.auth.Login(req)
	if errors.Is(err, services.ErrBadCredentials) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(resp)
}
