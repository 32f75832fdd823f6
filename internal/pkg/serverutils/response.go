package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the JSON shape of every error reply.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type SuccessBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func ErrorResponse(code int, detail string) ErrorBody {
	return ErrorBody{Error: fmt.Sprintf("HTTP %d", code), Detail: detail}
}

// InternalErrorResponse hides the cause of unexpected failures from clients.
func InternalErrorResponse() ErrorBody {
	return ErrorBody{Error: "Internal Server Error", Detail: "An unexpected error occurred"}
}

func SuccessResponse(message string, data interface{}) SuccessBody {
	return SuccessBody{Success: true, Message: message, Data: data}
}

// HTTPError is returned from handlers and rendered by ErrorHandler.
func HTTPError(code int, detail string) *fiber.Error {
	return fiber.NewError(code, detail)
}
