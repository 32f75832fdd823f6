package controller

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
)

type upload struct {
	filename    string
	contentType string
	content     []byte
}

// formUpload reads the named multipart file. ok is false when the request
// carries no file under that name.
func formUpload(ctx *fiber.Ctx, field string) (up upload, ok bool, err error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		return upload{}, false, nil
	}

	content, err := readFileHeader(fileHeader)
	if err != nil {
		return upload{}, false, fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file")
	}
	return upload{
		filename:    fileHeader.Filename,
		contentType: fileHeader.Header.Get(fiber.HeaderContentType),
		content:     content,
	}, true, nil
}

func readFileHeader(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
