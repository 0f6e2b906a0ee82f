package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"raven-alert/backend/internal/model"
)

// EmergencyAlertRepository 广播历史数据访问接口（追加写，无更新删除）
type EmergencyAlertRepository interface {
	Create(ctx context.Context, alert *model.EmergencyAlert) error
	ListByUser(ctx context.Context, userID string) ([]model.EmergencyAlert, error)
	// LatestLocation 返回用户最近一条带坐标或地图链接的历史记录，
	// 作为定时触发广播的位置快照来源；无历史时返回 (nil, nil)
	LatestLocation(ctx context.Context, userID string) (*model.EmergencyAlert, error)
	CreateRecording(ctx context.Context, rec *model.EmergencyRecording) error
	ListRecordingsByUser(ctx context.Context, userID string) ([]model.EmergencyRecording, error)
}

type emergencyAlertRepo struct {
	db *gorm.DB
}

// NewEmergencyAlertRepo 创建 EmergencyAlertRepository 实例
func NewEmergencyAlertRepo(db *gorm.DB) EmergencyAlertRepository {
	return &emergencyAlertRepo{db: db}
}

func (r *emergencyAlertRepo) Create(ctx context.Context, alert *model.EmergencyAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *emergencyAlertRepo) ListByUser(ctx context.Context, userID string) ([]model.EmergencyAlert, error) {
	var alerts []model.EmergencyAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

func (r *emergencyAlertRepo) LatestLocation(ctx context.Context, userID string) (*model.EmergencyAlert, error) {
	var alert model.EmergencyAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *emergencyAlertRepo) CreateRecording(ctx context.Context, rec *model.EmergencyRecording) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *emergencyAlertRepo) ListRecordingsByUser(ctx context.Context, userID string) ([]model.EmergencyRecording, error) {
	var recs []model.EmergencyRecording
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}
