package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/filekit-workers/internal/models"
	"go.uber.org/zap"
)

// BatchCompressor is the synchronous preview and commit API.
type BatchCompressor interface {
	Preview(ctx context.Context, req models.PreviewRequest) ([]models.PreviewFileResult, error)
	Compress(ctx context.Context, req models.CompressRequest) ([]models.CompressFileResult, error)
}

type CompressionHandler struct {
	compressor BatchCompressor
	logger     *zap.Logger
}

func NewCompressionHandler(compressor BatchCompressor, logger *zap.Logger) *CompressionHandler {
	return &CompressionHandler{
		compressor: compressor,
		logger:     logger,
	}
}

// PreviewBatch handles POST /compress-batch-preview.
func (h *CompressionHandler) PreviewBatch(c *gin.Context) {
	var req models.PreviewRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	files, err := h.compressor.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.PreviewResponse{
		OK:    true,
		Files: files,
	})
}

// CompressBatch handles POST /compress-batch.
func (h *CompressionHandler) CompressBatch(c *gin.Context) {
	var req models.CompressRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	files, err := h.compressor.Compress(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.CompressResponse{
		OK:    true,
		Files: files,
	})
}
