package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quillpdf/internal/app"
	"quillpdf/internal/transport/http/response"
)

type FileHandler struct {
	fileService *app.FileService
}

type CompleteUploadRequest struct {
	Key  string `json:"key" binding:"required,max=256"`
	Name string `json:"name" binding:"required,max=256"`
}

func NewFileHandler(fileService *app.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// CompleteUpload is the upload-provider completion callback: the
// object is already in storage, this records it and queues ingestion.
func (h *FileHandler) CompleteUpload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CompleteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	file, err := h.fileService.CompleteUpload(c.Request.Context(), app.CompleteUploadInput{
		UserID: userID,
		Key:    req.Key,
		Name:   req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrIngestEnqueue):
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "complete upload failed")
		}
		return
	}

	response.OK(c, file)
}

func (h *FileHandler) ListFiles(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	files, err := h.fileService.ListFiles(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list files failed")
		return
	}
	response.OK(c, files)
}

func (h *FileHandler) GetFileByKey(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := h.fileService.GetFileByKey(c.Param("key"), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFileNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get file failed")
		}
		return
	}
	response.OK(c, file)
}

func (h *FileHandler) GetUploadStatus(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	status, err := h.fileService.GetUploadStatus(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFileNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get upload status failed")
		}
		return
	}
	response.OK(c, gin.H{"status": status})
}

func (h *FileHandler) GetFileMessages(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	var cursor uint
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid cursor")
			return
		}
		cursor = uint(parsed)
	}

	page, err := h.fileService.GetFileMessages(c.Param("id"), userID, limit, cursor)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFileNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get messages failed")
		}
		return
	}
	response.OK(c, page)
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	fileID := c.Param("id")
	if err := h.fileService.DeleteFile(c.Request.Context(), fileID, userID); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, response.CodeFileNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete file failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_file_id": fileID})
}
