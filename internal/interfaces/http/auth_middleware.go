package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/pkg/jwt"
)

// LocalActor key de c.Locals con el actor de la petición.
const LocalActor = "actor"

// Roles reconocidos en el claim role del token.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// IdentityMiddleware resuelve el actor de la petición una sola vez y lo deja en c.Locals.
// Con jwtSecret vacío el servicio opera en modo abierto: todas las peticiones usan el actor anónimo.
// Con secret, exige un Bearer Token válido.
func IdentityMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if jwtSecret == "" {
			c.Locals(LocalActor, entity.Anonymous(c.IP()))
			return c.Next()
		}
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
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalActor, entity.Actor{
			UserID:        claims.UserID,
			Email:         claims.Email,
			Role:          claims.Role,
			SourceAddress: c.IP(),
		})
		return c.Next()
	}
}

// ActorFrom devuelve el actor resuelto por IdentityMiddleware, o el anónimo si no hay.
func ActorFrom(c *fiber.Ctx) entity.Actor {
	if a, ok := c.Locals(LocalActor).(entity.Actor); ok {
		return a
	}
	return entity.Anonymous(c.IP())
}

// GetRole devuelve el rol del actor (vacío en modo abierto).
func GetRole(c *fiber.Ctx) string {
	return ActorFrom(c).Role
}

// RequireRole autoriza solo a los roles indicados. Debe usarse DESPUÉS de IdentityMiddleware.
//   - 401 MISSING_ROLE si el token no trae rol.
//   - 403 FORBIDDEN si el rol no está permitido.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		if !actor.HasRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
		}
		return c.Next()
	}
}
