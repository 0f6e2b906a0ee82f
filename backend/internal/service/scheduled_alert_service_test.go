package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"raven-alert/backend/internal/dto"
	"raven-alert/backend/internal/model"
	pkgerrors "raven-alert/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestScheduledAlertService() (ScheduledAlertService, *testRepos) {
	repos := newTestRepos()
	svc := NewScheduledAlertService(repos.toRepository(), zap.NewNop())
	return svc, repos
}

// ════════════════════════════════════════════════════════════
// Create 测试
// ════════════════════════════════════════════════════════════

func TestScheduledAlertService_Create_Success(t *testing.T) {
	svc, _ := setupTestScheduledAlertService()

	req := &dto.CreateScheduledAlertRequest{
		Location:     "外滩",
		Companions:   "李四",
		Notes:        "夜跑",
		ScheduledFor: time.Now().Add(time.Hour),
	}
	result, err := svc.Create(context.Background(), "user-1", req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if result.Status != model.ScheduledAlertPending {
		t.Errorf("新建记录应为 pending，实际=%s", result.Status)
	}
	if result.ID == "" {
		t.Error("应返回记录 ID")
	}
}

func TestScheduledAlertService_Create_RejectsPastTime(t *testing.T) {
	svc, _ := setupTestScheduledAlertService()

	req := &dto.CreateScheduledAlertRequest{
		Location:     "外滩",
		Companions:   "李四",
		ScheduledFor: time.Now().Add(-time.Minute),
	}
	_, err := svc.Create(context.Background(), "user-1", req)
	if !errors.Is(err, ErrScheduledInPast) {
		t.Errorf("期望 ErrScheduledInPast，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// Cancel 测试
// ════════════════════════════════════════════════════════════

func TestScheduledAlertService_Cancel_Success(t *testing.T) {
	svc, repos := setupTestScheduledAlertService()
	alert := seedDueAlert(repos, "user-1", time.Hour)

	if err := svc.Cancel(context.Background(), "user-1", alert.ScheduledAlertID); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}

	got, _ := repos.scheduledAlert.GetByID(context.Background(), alert.ScheduledAlertID)
	if got.Status != model.ScheduledAlertCancelled {
		t.Errorf("期望 cancelled，实际=%s", got.Status)
	}
}

func TestScheduledAlertService_Cancel_AlreadyTriggered(t *testing.T) {
	svc, repos := setupTestScheduledAlertService()
	alert := seedDueAlert(repos, "user-1", time.Hour)

	// 扫描器抢先触发
	if err := repos.scheduledAlert.MarkTriggered(context.Background(), alert.ScheduledAlertID); err != nil {
		t.Fatalf("预置触发失败: %v", err)
	}

	err := svc.Cancel(context.Background(), "user-1", alert.ScheduledAlertID)
	if !errors.Is(err, pkgerrors.ErrAlreadyResolved) {
		t.Errorf("期望 ErrAlreadyResolved，实际: %v", err)
	}
	// 状态保持 triggered，不被覆盖
	got, _ := repos.scheduledAlert.GetByID(context.Background(), alert.ScheduledAlertID)
	if got.Status != model.ScheduledAlertTriggered {
		t.Errorf("取消失败不应改写状态，实际=%s", got.Status)
	}
}

func TestScheduledAlertService_Cancel_NotFound(t *testing.T) {
	svc, _ := setupTestScheduledAlertService()

	err := svc.Cancel(context.Background(), "user-1", "nonexistent")
	if !errors.Is(err, ErrScheduledAlertNotFound) {
		t.Errorf("期望 ErrScheduledAlertNotFound，实际: %v", err)
	}
}

func TestScheduledAlertService_Cancel_NotOwner(t *testing.T) {
	svc, repos := setupTestScheduledAlertService()
	alert := seedDueAlert(repos, "user-1", time.Hour)

	err := svc.Cancel(context.Background(), "user-2", alert.ScheduledAlertID)
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("期望 ErrNotOwner，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// List 测试
// ════════════════════════════════════════════════════════════

func TestScheduledAlertService_List_FilterByStatus(t *testing.T) {
	svc, repos := setupTestScheduledAlertService()
	seedDueAlert(repos, "user-1", time.Hour)
	cancelled := seedDueAlert(repos, "user-1", 2*time.Hour)
	_ = repos.scheduledAlert.Cancel(context.Background(), cancelled.ScheduledAlertID)
	seedDueAlert(repos, "user-2", time.Hour) // 他人的记录

	result, err := svc.List(context.Background(), "user-1", &dto.ScheduledAlertListRequest{Status: "pending"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望 1 条 pending 记录，实际=%d", len(result))
	}
	if result[0].Status != model.ScheduledAlertPending {
		t.Errorf("过滤结果状态错误: %s", result[0].Status)
	}

	all, _ := svc.List(context.Background(), "user-1", &dto.ScheduledAlertListRequest{})
	if len(all) != 2 {
		t.Errorf("不过滤时期望 2 条，实际=%d", len(all))
	}
}

// ════════════════════════════════════════════════════════════
// ImportICS 测试
// ════════════════════════════════════════════════════════════

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:ev-future@test
DTSTART:20990101T200000Z
SUMMARY:和李四夜跑
LOCATION:外滩
DESCRIPTION:沿江步道
END:VEVENT
BEGIN:VEVENT
UID:ev-past@test
DTSTART:20200101T200000Z
SUMMARY:过去的活动
LOCATION:旧地点
END:VEVENT
END:VCALENDAR
`

func TestScheduledAlertService_ImportICS_CreatesFutureEvents(t *testing.T) {
	svc, repos := setupTestScheduledAlertService()

	result, err := svc.ImportICS(context.Background(), "user-1", strings.NewReader(sampleICS))
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}

	if result.Created != 1 {
		t.Errorf("期望 Created=1，实际=%d", result.Created)
	}
	if result.Skipped != 1 {
		t.Errorf("过去的事件应跳过，实际 Skipped=%d", result.Skipped)
	}

	alerts, _ := repos.scheduledAlert.ListByUser(context.Background(), "user-1", "")
	if len(alerts) != 1 {
		t.Fatalf("期望落库 1 条，实际=%d", len(alerts))
	}
	if alerts[0].Location != "外滩" || alerts[0].Companions != "和李四夜跑" {
		t.Errorf("事件字段映射错误: location=%s companions=%s", alerts[0].Location, alerts[0].Companions)
	}
	if alerts[0].Status != model.ScheduledAlertPending {
		t.Errorf("导入的记录应为 pending，实际=%s", alerts[0].Status)
	}
}

func TestScheduledAlertService_ImportICS_InvalidData(t *testing.T) {
	svc, _ := setupTestScheduledAlertService()

	_, err := svc.ImportICS(context.Background(), "user-1", strings.NewReader("not an ics file"))
	if !errors.Is(err, ErrInvalidICS) {
		t.Errorf("期望 ErrInvalidICS，实际: %v", err)
	}
}
