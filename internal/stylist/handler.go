package stylist

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxUploadSize caps the accepted image size.
const MaxUploadSize = 10 << 20

// RegisterRoutes wires the prediction endpoint to the Gin router.
func RegisterRoutes(router *gin.Engine, svc *Service) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/predict", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+1<<20)

		file, err := c.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image file is too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "no image file was uploaded"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open the image"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read the image"})
			return
		}

		result, err := svc.Recommend(c.Request.Context(), data)
		if errors.Is(err, ErrUnreadableImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrUnreadableImage.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	})
}
