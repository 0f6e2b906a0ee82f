package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"raven-alert/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *testRepos) {
	repos := newTestRepos()
	svc := NewExportService(repos.toRepository(), zap.NewNop())
	return svc, repos
}

// ── ExportHistory 测试 ──

func TestExportService_ExportHistory_NoHistory(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportHistory(context.Background(), "user-1")
	if !errors.Is(err, ErrExportNoHistory) {
		t.Errorf("期望 ErrExportNoHistory，实际: %v", err)
	}
}

func TestExportService_ExportHistory_Success(t *testing.T) {
	svc, repos := setupTestExportService()

	lat, lng := 31.2304, 121.4737
	saID := "sa-1"
	_ = repos.emergencyAlert.Create(context.Background(), &model.EmergencyAlert{
		UserID:         "user-1",
		UserName:       "张三",
		LocationLat:    &lat,
		LocationLng:    &lng,
		GoogleMapsLink: "https://www.google.com/maps?q=31.230400,121.473700",
		Status:         model.EmergencyAlertSent,
	})
	_ = repos.emergencyAlert.Create(context.Background(), &model.EmergencyAlert{
		UserID:           "user-1",
		UserName:         "张三",
		GoogleMapsLink:   "Location unavailable",
		Status:           model.EmergencyAlertFailed,
		ScheduledAlertID: &saID,
	})

	buf, filename, err := svc.ExportHistory(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ExportHistory 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾: %s", filename)
	}

	// 回读校验内容
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容不是合法的 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("广播历史")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	// 表头 + 2 条数据
	if len(rows) != 3 {
		t.Fatalf("期望 3 行，实际=%d", len(rows))
	}

	// 触发来源列区分手动/定时
	sources := []string{rows[1][6], rows[2][6]}
	hasManual, hasScheduled := false, false
	for _, s := range sources {
		switch s {
		case "手动 SOS":
			hasManual = true
		case "定时触发":
			hasScheduled = true
		}
	}
	if !hasManual || !hasScheduled {
		t.Errorf("触发来源列错误: %v", sources)
	}
}

func TestExportService_ExportHistory_OnlyOwnRecords(t *testing.T) {
	svc, repos := setupTestExportService()

	_ = repos.emergencyAlert.Create(context.Background(), &model.EmergencyAlert{
		UserID: "user-2", UserName: "李四", GoogleMapsLink: "link", Status: model.EmergencyAlertSent,
	})

	_, _, err := svc.ExportHistory(context.Background(), "user-1")
	if !errors.Is(err, ErrExportNoHistory) {
		t.Errorf("他人记录不应计入导出，期望 ErrExportNoHistory，实际: %v", err)
	}
}
