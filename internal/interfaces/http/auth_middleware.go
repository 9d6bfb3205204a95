package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ricazo/pos-engine/internal/application/dto"
	"github.com/ricazo/pos-engine/pkg/jwt"
)

// Locals keys para UserID y UnitID en Fiber.
const (
	LocalUserID = "user_id"
	LocalUnitID = "unit_id"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y UnitID a c.Locals.
// El motor confía en la identidad del token: operador y unidad vienen siempre de aquí, nunca del body.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, unitID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token sin operador"})
		}
		if unitID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_UNIT", Message: "token sin unidad asignada"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalUnitID, unitID)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetUnitID devuelve la unidad (loja) del contexto (después del middleware de auth).
func GetUnitID(c *fiber.Ctx) string {
	v := c.Locals(LocalUnitID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
