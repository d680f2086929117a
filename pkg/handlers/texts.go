package handlers

import (
	"errors"
	"strconv"
	"strings"

	"pastehub/pkg/models"
	"pastehub/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type TextsHandler struct {
	texts services.TextService
	share services.ShareService
}

func NewTexts(texts services.TextService, share services.ShareService) *TextsHandler {
	return &TextsHandler{texts: texts, share: share}
}

// POST /api/texts (auth required)
func (h *TextsHandler) Create(c *fiber.Ctx) error {
	var req models.CreateTextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title and content are required"})
	}

	authorID, _ := c.Locals("user_id").(int)
	text, err := h.texts.Create(req, authorID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(201).JSON(text)
}

// GET /api/texts (auth required)
func (h *TextsHandler) List(c *fiber.Ctx) error {
	authorID, _ := c.Locals("user_id").(int)
	texts, err := h.texts.List(authorID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(texts)
}

// GET /api/texts/:id (auth required)
func (h *TextsHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	authorID, _ := c.Locals("user_id").(int)
	text, err := h.texts.Get(id, authorID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(text)
}

// PUT /api/texts/:id (auth required)
func (h *TextsHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var req models.UpdateTextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	authorID, _ := c.Locals("user_id").(int)
	text, err := h.texts.Update(id, authorID, req)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(text)
}

// DELETE /api/texts/:id (auth required)
func (h *TextsHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	authorID, _ := c.Locals("user_id").(int)
	if err := h.texts.Delete(id, authorID); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(204)
}

// GET /api/share/:shareableId (public)
func (h *TextsHandler) GetShared(c *fiber.Ctx) error {
	shareableID := c.Params("shareableId")
	if shareableID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "invalid shareable id"})
	}

	shared, err := h.share.GetShared(c.Context(), shareableID, c.IP())
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Text not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(shared)
}

func (h *TextsHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Text not found"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
}
