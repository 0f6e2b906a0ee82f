package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"raven-alert/backend/internal/model"
	"raven-alert/backend/internal/repository"
	pkgerrors "raven-alert/backend/pkg/errors"
)

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles map[string]*model.Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	if profile.UserID == "" {
		profile.UserID = fmt.Sprintf("user-%d", len(m.profiles)+1)
	}
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Update(_ context.Context, profile *model.Profile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

// ── Mock ContactRepository ──

type mockContactRepo struct {
	contacts map[string]*model.Contact
	seq      int
	listErr  error
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{contacts: make(map[string]*model.Contact)}
}

func (m *mockContactRepo) Create(_ context.Context, contact *model.Contact) error {
	if contact.ContactID == "" {
		m.seq++
		contact.ContactID = fmt.Sprintf("contact-%d", m.seq)
	}
	contact.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	m.contacts[contact.ContactID] = contact
	return nil
}

func (m *mockContactRepo) GetByID(_ context.Context, id string) (*model.Contact, error) {
	if c, ok := m.contacts[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContactRepo) ListByUser(_ context.Context, userID string) ([]model.Contact, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Contact
	for _, c := range m.contacts {
		if c.UserID == userID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockContactRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, c := range m.contacts {
		if c.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockContactRepo) Update(_ context.Context, contact *model.Contact) error {
	m.contacts[contact.ContactID] = contact
	return nil
}

func (m *mockContactRepo) Delete(_ context.Context, id string) error {
	delete(m.contacts, id)
	return nil
}

// ── Mock ScheduledAlertRepository ──

// mockScheduledAlertRepo 状态流转语义与真实实现保持一致：
// 仅 pending 的记录可被 Cancel/MarkTriggered，否则返回 ErrAlreadyResolved
type mockScheduledAlertRepo struct {
	mu           sync.Mutex
	alerts       map[string]*model.ScheduledAlert
	seq          int
	transitions  int
	markErr      error
	markErrForID string
}

func newMockScheduledAlertRepo() *mockScheduledAlertRepo {
	return &mockScheduledAlertRepo{alerts: make(map[string]*model.ScheduledAlert)}
}

func (m *mockScheduledAlertRepo) Create(_ context.Context, alert *model.ScheduledAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if alert.ScheduledAlertID == "" {
		m.seq++
		alert.ScheduledAlertID = fmt.Sprintf("sa-%d", m.seq)
	}
	alert.CreatedAt = time.Now()
	m.alerts[alert.ScheduledAlertID] = alert
	return nil
}

func (m *mockScheduledAlertRepo) GetByID(_ context.Context, id string) (*model.ScheduledAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.alerts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduledAlertRepo) ListByUser(_ context.Context, userID, status string) ([]model.ScheduledAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScheduledAlert
	for _, a := range m.alerts {
		if a.UserID != userID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledFor.Before(result[j].ScheduledFor)
	})
	return result, nil
}

func (m *mockScheduledAlertRepo) ListDue(_ context.Context, now time.Time) ([]model.ScheduledAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScheduledAlert
	for _, a := range m.alerts {
		if a.Status == model.ScheduledAlertPending && a.ScheduledFor.Before(now) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledFor.Before(result[j].ScheduledFor)
	})
	return result, nil
}

func (m *mockScheduledAlertRepo) Cancel(_ context.Context, id string) error {
	return m.transition(id, model.ScheduledAlertCancelled)
}

func (m *mockScheduledAlertRepo) MarkTriggered(_ context.Context, id string) error {
	if m.markErr != nil && (m.markErrForID == "" || m.markErrForID == id) {
		return m.markErr
	}
	return m.transition(id, model.ScheduledAlertTriggered)
}

func (m *mockScheduledAlertRepo) transition(id, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok || a.Status != model.ScheduledAlertPending {
		return pkgerrors.ErrAlreadyResolved
	}
	a.Status = target
	m.transitions++
	return nil
}

// ── Mock EmergencyAlertRepository ──

type mockEmergencyAlertRepo struct {
	mu         sync.Mutex
	alerts     []*model.EmergencyAlert
	recordings []*model.EmergencyRecording
	latestErr  error
}

func newMockEmergencyAlertRepo() *mockEmergencyAlertRepo {
	return &mockEmergencyAlertRepo{}
}

func (m *mockEmergencyAlertRepo) Create(_ context.Context, alert *model.EmergencyAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if alert.EmergencyAlertID == "" {
		alert.EmergencyAlertID = fmt.Sprintf("ea-%d", len(m.alerts)+1)
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *mockEmergencyAlertRepo) ListByUser(_ context.Context, userID string) ([]model.EmergencyAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.EmergencyAlert
	for _, a := range m.alerts {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockEmergencyAlertRepo) LatestLocation(_ context.Context, userID string) (*model.EmergencyAlert, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.EmergencyAlert
	for _, a := range m.alerts {
		if a.UserID != userID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (m *mockEmergencyAlertRepo) CreateRecording(_ context.Context, rec *model.EmergencyRecording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.RecordingID == "" {
		rec.RecordingID = fmt.Sprintf("rec-%d", len(m.recordings)+1)
	}
	rec.CreatedAt = time.Now()
	m.recordings = append(m.recordings, rec)
	return nil
}

func (m *mockEmergencyAlertRepo) ListRecordingsByUser(_ context.Context, userID string) ([]model.EmergencyRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.EmergencyRecording
	for _, r := range m.recordings {
		if r.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── 测试辅助 ──

// testRepos 聚合所有 mock repo 便于 seed 数据
type testRepos struct {
	profile        *mockProfileRepo
	contact        *mockContactRepo
	scheduledAlert *mockScheduledAlertRepo
	emergencyAlert *mockEmergencyAlertRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		profile:        newMockProfileRepo(),
		contact:        newMockContactRepo(),
		scheduledAlert: newMockScheduledAlertRepo(),
		emergencyAlert: newMockEmergencyAlertRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Profile:        r.profile,
		Contact:        r.contact,
		ScheduledAlert: r.scheduledAlert,
		EmergencyAlert: r.emergencyAlert,
	}
}

// seedProfile 种子用户
func (r *testRepos) seedProfile(id, name string) {
	r.profile.profiles[id] = &model.Profile{
		UserID:   id,
		FullName: name,
		Email:    id + "@example.com",
		Role:     "user",
	}
}

// seedContact 种子联系人
func (r *testRepos) seedContact(userID, name, email string) {
	r.contact.seq++
	r.contact.contacts[fmt.Sprintf("contact-%d", r.contact.seq)] = &model.Contact{
		ContactID: fmt.Sprintf("contact-%d", r.contact.seq),
		UserID:    userID,
		Name:      name,
		Phone:     "13800000000",
		Email:     email,
		NotifyBy:  model.NotifyByBoth,
		BaseModel: model.BaseModel{CreatedAt: time.Now().Add(time.Duration(r.contact.seq) * time.Millisecond)},
	}
}
