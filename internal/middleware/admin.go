package middleware

import (
	"slices"
	"strings"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/config"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AdminRequired gates the global mission catalog. A request passes with the
// ADMIN_TOKEN header, with a JWT whose email or sub is listed in
// ADMIN_EMAILS / ADMIN_USER_IDS, or when the user's role is "admin".
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	g := adminGate{
		db:      db,
		token:   cfg.AdminToken,
		emails:  parseCSV(cfg.AdminEmails),
		userIDs: parseCSV(cfg.AdminUserIDs),
	}

	return func(c *fiber.Ctx) error {
		if g.token != "" && c.Get("X-Admin-Token") == g.token {
			return c.Next()
		}

		claims, ok := jwtClaims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if g.admits(claims) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

type adminGate struct {
	db      *gorm.DB
	token   string
	emails  []string
	userIDs []string
}

func (g adminGate) admits(claims jwt.MapClaims) bool {
	email, _ := claims["email"].(string)
	sub, _ := claims["sub"].(string)
	if slices.Contains(g.emails, email) || slices.Contains(g.userIDs, sub) {
		return true
	}
	if sub == "" {
		return false
	}

	var user models.User
	if err := g.db.Select("id", "role").Where("id = ?", sub).First(&user).Error; err != nil {
		return false
	}
	return user.Role == "admin"
}

func jwtClaims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

func parseCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
