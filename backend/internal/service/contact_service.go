package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"raven-alert/backend/internal/dto"
	"raven-alert/backend/internal/model"
	"raven-alert/backend/internal/repository"
)

// MaxContactsPerUser 每个用户最多可配置的紧急联系人数量
const MaxContactsPerUser = 5

var (
	ErrContactLimit    = errors.New("紧急联系人数量已达上限（5 个）")
	ErrContactNotFound = errors.New("联系人不存在")
)

// ContactService 紧急联系人业务接口
type ContactService interface {
	Create(ctx context.Context, userID string, req *dto.CreateContactRequest) (*dto.ContactResponse, error)
	List(ctx context.Context, userID string) ([]dto.ContactResponse, error)
	Update(ctx context.Context, userID, contactID string, req *dto.UpdateContactRequest) (*dto.ContactResponse, error)
	Delete(ctx context.Context, userID, contactID string) error
}

type contactService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewContactService 创建 ContactService 实例
func NewContactService(repo *repository.Repository, logger *zap.Logger) ContactService {
	return &contactService{repo: repo, logger: logger}
}

func (s *contactService) Create(ctx context.Context, userID string, req *dto.CreateContactRequest) (*dto.ContactResponse, error) {
	// 上限检查在写入前做，并发下可能短暂超出，可接受
	count, err := s.repo.Contact.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("统计联系人失败", zap.Error(err))
		return nil, err
	}
	if count >= MaxContactsPerUser {
		return nil, ErrContactLimit
	}

	notifyBy := req.NotifyBy
	if notifyBy == "" {
		notifyBy = model.NotifyByBoth
	}

	contact := &model.Contact{
		UserID:   userID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		NotifyBy: notifyBy,
	}
	if err := s.repo.Contact.Create(ctx, contact); err != nil {
		s.logger.Error("创建联系人失败", zap.Error(err))
		return nil, err
	}

	return contactToResponse(contact), nil
}

func (s *contactService) List(ctx context.Context, userID string) ([]dto.ContactResponse, error) {
	contacts, err := s.repo.Contact.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询联系人失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		result = append(result, *contactToResponse(&contacts[i]))
	}
	return result, nil
}

func (s *contactService) Update(ctx context.Context, userID, contactID string, req *dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	contact, err := s.getOwned(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.NotifyBy != nil {
		contact.NotifyBy = *req.NotifyBy
	}

	if err := s.repo.Contact.Update(ctx, contact); err != nil {
		s.logger.Error("更新联系人失败", zap.Error(err))
		return nil, err
	}
	return contactToResponse(contact), nil
}

func (s *contactService) Delete(ctx context.Context, userID, contactID string) error {
	if _, err := s.getOwned(ctx, userID, contactID); err != nil {
		return err
	}
	if err := s.repo.Contact.Delete(ctx, contactID); err != nil {
		s.logger.Error("删除联系人失败", zap.Error(err))
		return err
	}
	return nil
}

// getOwned 查询联系人并校验归属；越权与不存在统一返回 ErrContactNotFound
func (s *contactService) getOwned(ctx context.Context, userID, contactID string) (*model.Contact, error) {
	contact, err := s.repo.Contact.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		s.logger.Error("查询联系人失败", zap.Error(err))
		return nil, err
	}
	if contact.UserID != userID {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

func contactToResponse(c *model.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:        c.ContactID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		NotifyBy:  c.NotifyBy,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
