package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/example/asati/internal/auth"
	"github.com/example/asati/internal/datamodels/user"
)

var (
	// ErrIncompleteUser 姓名、邮箱、密码、地址均必填
	ErrIncompleteUser = errors.New("name, email, password and address are required")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
)

// UserService 用户目录服务（cmd/directory 使用）
type UserService struct {
	repo user.Repository
	now  func() time.Time
}

func NewUserService(repo user.Repository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// List 全部用户，按创建时间排序
func (s *UserService) List(ctx context.Context) ([]*user.User, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return list, nil
}

// Get 按 ID 查询
func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// Create 分配 ID、加盐哈希密码后入库
func (s *UserService) Create(ctx context.Context, in user.NewUser) (*user.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	if !in.Complete() {
		return nil, ErrIncompleteUser
	}
	u := &user.User{
		ID:        user.NewID(),
		Name:      in.Name,
		Email:     in.Email,
		Address:   in.Address,
		Role:      user.RoleUser,
		Salt:      auth.NewSalt(),
		CreatedAt: s.now(),
	}
	u.PasswordHash = auth.HashPassword(in.Password, u.Salt)
	if err := s.repo.Create(ctx, u); err != nil {
		GetMonitor().RecordDBError()
		return nil, fmt.Errorf("create user: %w", err)
	}
	GetMonitor().RecordUserCreated()
	return u, nil
}

// Delete 删除用户
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		GetMonitor().RecordDBError()
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	GetMonitor().RecordUserDeleted()
	return nil
}
