//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"raven-alert/backend/internal/model"
	"raven-alert/backend/internal/repository"
	pkgerrors "raven-alert/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=raven password=raven_password dbname=raven_alert_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Profile{},
		&model.Contact{},
		&model.ScheduledAlert{},
		&model.EmergencyAlert{},
		&model.EmergencyRecording{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestUser 创建测试用户并返回清理函数
func setupTestUser(t *testing.T) (*model.Profile, func()) {
	t.Helper()
	ctx := context.Background()

	profile := &model.Profile{
		FullName:     "测试用户",
		Email:        fmt.Sprintf("test%d@example.com", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
		Role:         "user",
	}
	if err := testDB.WithContext(ctx).Create(profile).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	cleanup := func() {
		testDB.Where("user_id = ?", profile.UserID).Delete(&model.EmergencyAlert{})
		testDB.Where("user_id = ?", profile.UserID).Delete(&model.ScheduledAlert{})
		testDB.Where("user_id = ?", profile.UserID).Delete(&model.Contact{})
		testDB.Delete(profile)
	}
	return profile, cleanup
}

func seedPendingAlert(t *testing.T, userID string, scheduledFor time.Time) *model.ScheduledAlert {
	t.Helper()
	alert := &model.ScheduledAlert{
		UserID:       userID,
		Location:     "外滩",
		Companions:   "李四",
		ScheduledFor: scheduledFor,
		Status:       model.ScheduledAlertPending,
	}
	if err := testDB.Create(alert).Error; err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}
	return alert
}

// ═══════════════════════════════════════════════════════════
// ScheduledAlertRepository — 状态流转
// ═══════════════════════════════════════════════════════════

func TestScheduledAlertRepo_Transition_OnlyFromPending(t *testing.T) {
	profile, cleanup := setupTestUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	alert := seedPendingAlert(t, profile.UserID, time.Now().Add(time.Hour))

	// pending → cancelled 成功
	if err := repo.ScheduledAlert.Cancel(ctx, alert.ScheduledAlertID); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}

	// cancelled → triggered 拒绝
	err := repo.ScheduledAlert.MarkTriggered(ctx, alert.ScheduledAlertID)
	if err != pkgerrors.ErrAlreadyResolved {
		t.Errorf("期望 ErrAlreadyResolved，实际: %v", err)
	}

	// 状态保持 cancelled
	var got model.ScheduledAlert
	testDB.First(&got, "scheduled_alert_id = ?", alert.ScheduledAlertID)
	if got.Status != model.ScheduledAlertCancelled {
		t.Errorf("状态不应被改写，实际=%s", got.Status)
	}
}

func TestScheduledAlertRepo_Transition_FirstWriterWins(t *testing.T) {
	profile, cleanup := setupTestUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	alert := seedPendingAlert(t, profile.UserID, time.Now().Add(-time.Minute))

	// 并发竞争：取消与触发同时发起，只有一方成功
	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = repo.ScheduledAlert.Cancel(ctx, alert.ScheduledAlertID)
	}()
	go func() {
		defer wg.Done()
		results[1] = repo.ScheduledAlert.MarkTriggered(ctx, alert.ScheduledAlertID)
	}()
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else if err != pkgerrors.ErrAlreadyResolved {
			t.Errorf("败者应得到 ErrAlreadyResolved，实际: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("应恰好一方胜出，实际=%d", winners)
	}
}

func TestScheduledAlertRepo_ListDue_OrderAndFilter(t *testing.T) {
	profile, cleanup := setupTestUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	later := seedPendingAlert(t, profile.UserID, now.Add(-time.Minute))
	earlier := seedPendingAlert(t, profile.UserID, now.Add(-time.Hour))
	seedPendingAlert(t, profile.UserID, now.Add(time.Hour)) // 未到期

	cancelled := seedPendingAlert(t, profile.UserID, now.Add(-30*time.Minute))
	if err := repo.ScheduledAlert.Cancel(ctx, cancelled.ScheduledAlertID); err != nil {
		t.Fatalf("预置取消失败: %v", err)
	}

	due, err := repo.ScheduledAlert.ListDue(ctx, now)
	if err != nil {
		t.Fatalf("ListDue 应成功: %v", err)
	}

	// 只包含本用户这 2 条到期 pending（可能混有其他测试数据，按 ID 过滤）
	var mine []model.ScheduledAlert
	for _, a := range due {
		if a.UserID == profile.UserID {
			mine = append(mine, a)
		}
	}
	if len(mine) != 2 {
		t.Fatalf("期望 2 条到期记录，实际=%d", len(mine))
	}
	if mine[0].ScheduledAlertID != earlier.ScheduledAlertID || mine[1].ScheduledAlertID != later.ScheduledAlertID {
		t.Error("ListDue 应按 scheduled_for 升序")
	}
}

// ═══════════════════════════════════════════════════════════
// EmergencyAlertRepository — 定位快照
// ═══════════════════════════════════════════════════════════

func TestEmergencyAlertRepo_LatestLocation(t *testing.T) {
	profile, cleanup := setupTestUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 无历史时返回 (nil, nil)
	snapshot, err := repo.EmergencyAlert.LatestLocation(ctx, profile.UserID)
	if err != nil {
		t.Fatalf("LatestLocation 应成功: %v", err)
	}
	if snapshot != nil {
		t.Error("无历史时应返回 nil 快照")
	}

	lat1, lng1 := 31.0, 121.0
	lat2, lng2 := 32.0, 122.0
	first := &model.EmergencyAlert{
		UserID: profile.UserID, UserName: profile.FullName,
		LocationLat: &lat1, LocationLng: &lng1,
		GoogleMapsLink: "link-1", Status: model.EmergencyAlertSent,
	}
	if err := repo.EmergencyAlert.Create(ctx, first); err != nil {
		t.Fatalf("创建历史失败: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	second := &model.EmergencyAlert{
		UserID: profile.UserID, UserName: profile.FullName,
		LocationLat: &lat2, LocationLng: &lng2,
		GoogleMapsLink: "link-2", Status: model.EmergencyAlertSent,
	}
	if err := repo.EmergencyAlert.Create(ctx, second); err != nil {
		t.Fatalf("创建历史失败: %v", err)
	}

	snapshot, err = repo.EmergencyAlert.LatestLocation(ctx, profile.UserID)
	if err != nil {
		t.Fatalf("LatestLocation 应成功: %v", err)
	}
	if snapshot == nil || snapshot.GoogleMapsLink != "link-2" {
		t.Errorf("应返回最近一条记录，实际=%v", snapshot)
	}
}

// ═══════════════════════════════════════════════════════════
// ContactRepository — 排序与计数
// ═══════════════════════════════════════════════════════════

func TestContactRepo_ListByUser_OrderedByCreation(t *testing.T) {
	profile, cleanup := setupTestUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c := &model.Contact{
			UserID: profile.UserID,
			Name:   fmt.Sprintf("联系人%d", i+1),
			Phone:  "13800000000",
			Email:  fmt.Sprintf("c%d@example.com", i+1),
		}
		if err := repo.Contact.Create(ctx, c); err != nil {
			t.Fatalf("创建联系人失败: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	list, err := repo.Contact.ListByUser(ctx, profile.UserID)
	if err != nil {
		t.Fatalf("ListByUser 应成功: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望 3 个联系人，实际=%d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.Before(list[i-1].CreatedAt) {
			t.Error("联系人应按创建时间升序")
		}
	}

	count, err := repo.Contact.CountByUser(ctx, profile.UserID)
	if err != nil || count != 3 {
		t.Errorf("期望计数 3，实际=%d err=%v", count, err)
	}
}
