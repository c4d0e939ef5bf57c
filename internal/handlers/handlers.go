package handlers

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/outfit-stylist/internal/predictor"
	"github.com/example/outfit-stylist/internal/session"
	"github.com/example/outfit-stylist/internal/usecase"
)

// MaxUploadSize is the default cap on an uploaded image.
const MaxUploadSize = 10 << 20

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

const pageName = "index.html"

// TooLargeMessage is shown when an upload exceeds the size cap.
const TooLargeMessage = "The selected image is too large."

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/"+pageName))

type handler struct {
	uc             *usecase.StylingUseCase
	maxUploadBytes int64
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, uc *usecase.StylingUseCase, sessionMiddleware gin.HandlerFunc, maxUploadBytes int64) {
	if maxUploadBytes <= 0 {
		maxUploadBytes = MaxUploadSize
	}
	h := &handler{uc: uc, maxUploadBytes: maxUploadBytes}

	router.SetHTMLTemplate(pageTemplate)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", h.metrics)

	sessions := router.Group("/", sessionMiddleware)
	sessions.GET("/", h.index)
	sessions.POST("/image", h.selectImage)
	sessions.POST("/submit", h.submit)
	sessions.GET("/preview/:id", h.preview)
	sessions.POST("/outfit/:index/image-error", h.imageError)
	sessions.GET("/history", h.history)
}

func (h *handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, h.uc.View(sessionID(c)))
}

func (h *handler) selectImage(c *gin.Context) {
	id := sessionID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.rejectTooLarge(c, id)
		case errors.Is(err, http.ErrMissingFile):
			// Nothing was chosen; the session keeps its selection and outcome.
			h.respond(c, http.StatusBadRequest, h.uc.View(id))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload"})
		}
		return
	}
	if file.Size > h.maxUploadBytes {
		h.rejectTooLarge(c, id)
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		return
	}

	view, err := h.uc.SelectImage(c.Request.Context(), id, predictor.Image{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}
	h.respond(c, http.StatusOK, view)
}

func (h *handler) submit(c *gin.Context) {
	view, err := h.uc.Submit(c.Request.Context(), sessionID(c))

	status := http.StatusOK
	var predErr *predictor.Error
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNoImage):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrSubmissionInFlight):
		status = http.StatusConflict
	case errors.As(err, &predErr):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	h.respond(c, status, view)
}

func (h *handler) preview(c *gin.Context) {
	image, err := h.uc.Preview(c.Request.Context(), sessionID(c), c.Param("id"))
	if errors.Is(err, session.ErrPreviewNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "preview not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preview"})
		return
	}

	contentType := image.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(image.Data)
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, contentType, image.Data)
}

func (h *handler) imageError(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a number"})
		return
	}

	src, substitute, err := h.uc.ReportImageFailure(sessionID(c), index)
	if errors.Is(err, session.ErrUnknownSession) || errors.Is(err, session.ErrCardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !substitute {
		c.JSON(http.StatusOK, gin.H{"substitute": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"substitute": true, "src": src})
}

func (h *handler) metrics(c *gin.Context) {
	summary, err := h.uc.GetMetricsSummary(c.Request.Context())
	if errors.Is(err, usecase.ErrSubmissionLogUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate metrics"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handler) history(c *gin.Context) {
	entries, err := h.uc.GetHistory(c.Request.Context(), sessionID(c))
	if errors.Is(err, usecase.ErrSubmissionLogUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": entries})
}

func (h *handler) rejectTooLarge(c *gin.Context, id string) {
	view := h.uc.View(id)
	view.Error = TooLargeMessage
	h.render(c, http.StatusRequestEntityTooLarge, view)
}

// render writes the page or the JSON view, depending on Accept.
func (h *handler) render(c *gin.Context, status int, view session.View) {
	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: pageName,
		HTMLData: view,
		JSONData: view,
	})
}

// respond answers a state-changing request. Browsers are sent back to the
// page so a reload does not repeat the POST; the outcome lives in the session.
func (h *handler) respond(c *gin.Context, status int, view session.View) {
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEHTML {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(status, view)
}
