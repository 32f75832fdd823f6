package controller

import (
	"legal-analyzer-be/internal/dto"
	"legal-analyzer-be/internal/pkg/serverutils"
	"legal-analyzer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("", c.Chat)
	h.Delete(":session_id", c.DeleteSession)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	up, ok, err := formUpload(ctx, "file")
	if err != nil {
		return err
	}
	var chatUpload *dto.ChatUpload
	if ok {
		chatUpload = &dto.ChatUpload{Filename: up.filename, ContentType: up.contentType, Content: up.content}
	}

	res, err := c.service.Chat(ctx.UserContext(), &req, chatUpload)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	res, err := c.service.DeleteSession(ctx.UserContext(), ctx.Params("session_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session deleted", res))
}
