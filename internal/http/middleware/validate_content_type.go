package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/filekit-workers/internal/models"
)

// RejectUploads refuses multipart bodies: the workers take paths on shared
// storage, never file contents.
func RejectUploads() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		contentType := ctx.GetHeader("Content-Type")

		if strings.Contains(contentType, "multipart/form-data") {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, models.APIResponse{
				OK:    false,
				Error: "File uploads are not supported, send input paths as JSON",
			})
			return
		}

		ctx.Next()
	}
}
