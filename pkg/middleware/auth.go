package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Auth validates the Bearer token and stores the user identity in locals.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}

		tokenStr := auth[7:]
		token, err := jwt.ParseWithClaims(tokenStr, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}

		claims := token.Claims.(*jwt.MapClaims)
		userID, ok := (*claims)["user_id"].(float64)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}
		email, _ := (*claims)["email"].(string)
		name, _ := (*claims)["name"].(string)

		c.Locals("user_id", int(userID))
		c.Locals("email", email)
		c.Locals("name", name)

		return c.Next()
	}
}
