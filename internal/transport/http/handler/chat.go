package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quillpdf/internal/app"
	"quillpdf/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	FileID  string `json:"file_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage answers a question about a file as a chunked plain-text
// stream. Error statuses can only be sent before the first delta is
// written; after that a failure just truncates the stream.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	wrote := false
	writeChunk := func(chunk string) error {
		if !wrote {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("Cache-Control", "no-cache")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
			wrote = true
		}
		if _, writeErr := c.Writer.Write([]byte(chunk)); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	}

	full, err := h.chatService.StreamAnswer(c.Request.Context(), app.StreamAnswerInput{
		UserID:  userID,
		FileID:  req.FileID,
		Message: req.Message,
	}, writeChunk)
	if err != nil {
		if wrote {
			// headers are gone; the truncated stream is the signal
			return
		}
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFileNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}

	// a completion with no deltas still has a body (the persisted
	// fallback text); the client must see what history recorded
	if !wrote {
		_ = writeChunk(full)
	}
}
