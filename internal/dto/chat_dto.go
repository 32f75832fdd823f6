package dto

// ChatRequest is the multipart form of POST /chat. The file part is read
// separately.
type ChatRequest struct {
	Message   string `json:"message" form:"message" validate:"max=2000"`
	SessionId string `json:"session_id" form:"session_id"`
}

type ChatUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ChatResponse struct {
	Response          string `json:"response"`
	SessionId         string `json:"session_id"`
	DocumentProcessed bool   `json:"document_processed"`
}

type DeleteSessionResponse struct {
	SessionId string `json:"session_id"`
	Deleted   bool   `json:"deleted"`
}
