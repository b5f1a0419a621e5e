package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxPDFBytes = 20 << 20

// UploadPDF godoc
// @Summary      Upload a PDF for knowledge learning
// @Description  Extracts text from the uploaded PDF and distills trading concepts into the knowledge base
// @Tags         knowledge
// @Accept       multipart/form-data
// @Produce      json
// @Param        pdf  formData  file  true  "PDF document"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /upload-pdf [post]
func (h *Handler) UploadPDF(c *gin.Context) {
	if h.learner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "knowledge learning unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.upload-pdf")
	defer span.End()

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No file part"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid file type."})
		return
	}
	if fileHeader.Size > maxPDFBytes {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "File too large."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPDFBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	concepts, err := h.learner.LearnFromPDF(ctx, fileHeader.Filename, data)
	if err != nil {
		log.Printf("handler: pdf learning failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": fmt.Sprintf("PDF processing failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Learning complete. Concepts: %d", concepts),
	})
}
