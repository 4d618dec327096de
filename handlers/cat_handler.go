package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	m "github.com/ChrisTheAbysswalker/nekopage/models"
	"github.com/ChrisTheAbysswalker/nekopage/page"
	s "github.com/ChrisTheAbysswalker/nekopage/services"
)

type CatSource interface {
	s.CatImageFetcher
	FetchCount() int64
}

type CatHandler struct {
	service CatSource
	logger  *zap.Logger
}

func NewCatHandler(service CatSource, logger *zap.Logger) *CatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatHandler{
		service: service,
		logger:  logger.Named("handlers"),
	}
}

// Index server-renders the page with a freshly fetched image.
func (h *CatHandler) Index(c *gin.Context) {
	props, err := page.LoadProps(c.Request.Context(), h.service)
	if err != nil {
		// ! no page without a server-picked cat; the client gets a bare 500
		h.logger.Error("render hook failed", zap.Error(err))
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	h.render(c, http.StatusOK, page.New(props, h.service))
}

// NextImage handles the button when the page script did not run. The form
// carries the URL on display so a failed fetch can render it unchanged.
func (h *CatHandler) NextImage(c *gin.Context) {
	component := page.New(page.Props{InitialCatImageURL: c.PostForm("current")}, h.service)

	status := http.StatusOK
	if err := component.OnClick(c.Request.Context()); err != nil {
		_ = c.Error(err)
		status = http.StatusBadGateway
	}
	h.render(c, status, component)
}

func (h *CatHandler) render(c *gin.Context, status int, component *page.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Writer); err != nil {
		// * headers are gone by now, only the log knows
		h.logger.Error("page render failed", zap.Error(err))
		_ = c.Error(err)
	}
}

func (h *CatHandler) GetCatImage(c *gin.Context) {
	image, err := h.service.FetchCatImage(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, upstreamError(err))
		return
	}

	c.JSON(http.StatusOK, m.CatImageResponse{URL: image.URL})
}

func (h *CatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, m.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Fetches:   h.service.FetchCount(),
	})
}

func upstreamError(err error) m.ErrorResponse {
	switch {
	case errors.Is(err, s.ErrNoImages):
		return m.ErrorResponse{Error: "no_images_available", Message: err.Error()}
	case errors.Is(err, s.ErrInvalidImage):
		return m.ErrorResponse{Error: "invalid_upstream_image", Message: err.Error()}
	default:
		return m.ErrorResponse{Error: "upstream_unavailable", Message: err.Error()}
	}
}
