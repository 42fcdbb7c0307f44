package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	driver string
}

func NewHealthHandler(db *gorm.DB, driver string) *HealthHandler {
	return &HealthHandler{db: db, driver: driver}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Driver:    h.driver,
	})
}
