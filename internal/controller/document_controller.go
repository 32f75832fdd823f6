package controller

import (
	"legal-analyzer-be/internal/dto"
	"legal-analyzer-be/internal/service"
	"legal-analyzer-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	AnalyzeDocument(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Post("/analyze-document", c.AnalyzeDocument)
}

func (c *documentController) AnalyzeDocument(ctx *fiber.Ctx) error {
	up, ok, err := formUpload(ctx, "file")
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, extract.MsgMissingName)
	}

	res, err := c.service.Analyze(ctx.UserContext(), &dto.AnalyzeDocumentRequest{
		Filename:    up.filename,
		ContentType: up.contentType,
		Content:     up.content,
	})
	if err != nil {
		return err
	}

	ctx.Set("X-Analysis-Id", res.AnalysisId)
	return ctx.JSON(res)
}
