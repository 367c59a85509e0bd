package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User 用户模型（目录服务与内存仓库共用）
type User struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	Address      string    `gorm:"size:512" json:"address"`
	Role         Role      `gorm:"size:16;not null;default:user" json:"role"`
	PasswordHash string    `gorm:"size:128;not null" json:"password_hash"` // 加盐哈希，不存明文
	Salt         string    `gorm:"size:64;not null" json:"salt"`
	CreatedAt    time.Time `json:"created_at"`
}

// Redacted 去掉密码哈希与盐，供未鉴权的调用方查看
func (u User) Redacted() User {
	u.PasswordHash = ""
	u.Salt = ""
	return u
}

// NewUser 管理员创建用户时提交的字段
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

// Complete 所有字段均必填
func (n NewUser) Complete() bool {
	return n.Name != "" && n.Email != "" && n.Password != "" && n.Address != ""
}

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*User, error)
}

// NewID 生成 user- 前缀加 9 位小写字母数字的用户 ID
func NewID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "user-" + raw[:9]
}
