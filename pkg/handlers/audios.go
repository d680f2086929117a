package handlers

import (
	"errors"
	"strconv"

	"pastehub/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type AudiosHandler struct {
	audios services.AudioService
}

func NewAudios(audios services.AudioService) *AudiosHandler {
	return &AudiosHandler{audios: audios}
}

// POST /api/audios (auth required, multipart)
func (h *AudiosHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "file is required"})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	defer src.Close()

	authorID, _ := c.Locals("user_id").(int)
	contentType := file.Header.Get("Content-Type")

	audio, err := h.audios.Upload(c.Context(), authorID, file.Filename, contentType, src, file.Size)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(201).JSON(audio)
}

// GET /api/audios/:id (auth required)
func (h *AudiosHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	authorID, _ := c.Locals("user_id").(int)
	audio, err := h.audios.Get(id, authorID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(audio)
}

// GET /api/audios/share/:shareableId/stream (public)
func (h *AudiosHandler) Stream(c *fiber.Ctx) error {
	shareableID := c.Params("shareableId")

	stream, err := h.audios.Stream(c.Context(), shareableID)
	if err != nil {
		return h.mapError(c, err)
	}

	c.Set("Content-Type", "audio/mp3")
	return c.SendStream(stream)
}

// DELETE /api/audios/:id (auth required)
func (h *AudiosHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	authorID, _ := c.Locals("user_id").(int)
	if err := h.audios.Delete(c.Context(), id, authorID); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(204)
}

func (h *AudiosHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Audio not found"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
}
