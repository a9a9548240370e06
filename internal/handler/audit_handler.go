package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	svc *service.AuditService
}

func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// Run GET /audit/units
func (h *AuditHandler) Run(c *gin.Context) {
	report, err := h.svc.Run(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, report)
}

// Export GET /audit/units/export
func (h *AuditHandler) Export(c *gin.Context) {
	buf, err := h.svc.ExportXLSX(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	filename := fmt.Sprintf("unit-audit-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
