package dto

// ── 紧急联系人模块 DTO ──

// CreateContactRequest 添加联系人请求
type CreateContactRequest struct {
	Name     string `json:"name"      binding:"required,min=2,max=100"`
	Phone    string `json:"phone"     binding:"required,max=30"`
	Email    string `json:"email"     binding:"omitempty,email,max=255"`
	NotifyBy string `json:"notify_by" binding:"omitempty,oneof=sms email both"`
}

// UpdateContactRequest 更新联系人请求
type UpdateContactRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone"     binding:"omitempty,max=30"`
	Email    *string `json:"email"     binding:"omitempty,email,max=255"`
	NotifyBy *string `json:"notify_by" binding:"omitempty,oneof=sms email both"`
}

// ContactResponse 联系人信息响应
type ContactResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	NotifyBy  string `json:"notify_by"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
