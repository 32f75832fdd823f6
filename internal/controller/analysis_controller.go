package controller

import (
	"legal-analyzer-be/internal/dto"
	"legal-analyzer-be/internal/pkg/serverutils"
	"legal-analyzer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	ListRecent(ctx *fiber.Ctx) error
}

type analysisController struct {
	service service.IAnalysisService
}

func NewAnalysisController(service service.IAnalysisService) IAnalysisController {
	return &analysisController{service: service}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	r.Get("/analyses", c.ListRecent)
}

func (c *analysisController) ListRecent(ctx *fiber.Ctx) error {
	var req dto.ListAnalysesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ListRecent(ctx.UserContext(), req.Limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list analyses", res))
}
