package model

// Profile 用户档案表 — 对应 profiles
type Profile struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FullName     string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Phone        string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	BaseModel
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }
