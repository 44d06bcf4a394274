package handler

import (
	"fmt"
	"net/http"
	"time"

	"leadflow_backend/internal/spreadsheet/service"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.GET("/export", h.Export)
}

func (h *Handler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file upload is required", nil)
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}

	result, err := h.svc.Import(c.Request.Context(), file)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Export(c *gin.Context) {
	buf, err := h.svc.Export(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
