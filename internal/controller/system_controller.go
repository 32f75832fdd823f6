package controller

import (
	"legal-analyzer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	Info(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type systemController struct {
	service service.ISystemService
}

func NewSystemController(service service.ISystemService) ISystemController {
	return &systemController{service: service}
}

func (c *systemController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Info)
	r.Get("/health", c.Health)
}

func (c *systemController) Info(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Info())
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Health(ctx.UserContext()))
}
