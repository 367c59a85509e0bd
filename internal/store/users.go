package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/asati/internal/auth"
	"github.com/example/asati/internal/datamodels/user"
)

// rejected 未进入命令执行就被拒绝的操作，只用于审计
type rejected struct{ op string }

func (r rejected) Name() string { return r.op }

func (s *Store) applyUsersLoaded(sess *Session, c usersLoaded) (any, *Event, error) {
	if sess != nil && sess.epoch != c.epoch {
		return nil, nil, ErrStaleResponse
	}
	s.users = append(s.users[:0:0], c.users...)
	return len(s.users), nil, nil
}

func (s *Store) applyUserAdded(sess *Session, c userAdded) (any, *Event, error) {
	if sess != nil && sess.epoch != c.epoch {
		return nil, nil, ErrStaleResponse
	}
	s.users = append(s.users, c.user)
	notifySuccess(sess, fmt.Sprintf("User account for %s created! ID: %s", c.user.Name, c.user.ID))
	return c.user, nil, nil
}

func (s *Store) applyUserRemoved(sess *Session, c userRemoved) (any, *Event, error) {
	if sess != nil && sess.epoch != c.epoch {
		return nil, nil, ErrStaleResponse
	}
	kept := s.users[:0:0]
	found := false
	for _, u := range s.users {
		if u.ID == c.id {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found && c.strict {
		return nil, nil, ErrUserNotFound
	}
	s.users = kept
	notifySuccess(sess, "User removed successfully.")
	return nil, nil, nil
}

// sessionEpoch sid 为空时返回 0
func (s *Store) sessionEpoch(sid string) (uint64, error) {
	if sid == "" {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(sid)
	if err != nil {
		return 0, err
	}
	return sess.epoch, nil
}

// fail 记录被拒绝的操作并写错误通知
func (s *Store) fail(sid, op string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(sid, rejected{op: op}, err)
	if sess, ok := s.sessions[sid]; ok {
		if msg := failureMessage(err); msg != "" {
			sess.notify(NotifyError, msg)
		}
	}
	return err
}

func (s *Store) directoryFailed(sid, op string, cause error) error {
	s.monitor.RecordDirectoryError()
	s.logger.Warn("user directory call failed", zap.String("op", op), zap.Error(cause))
	return s.fail(sid, op, fmt.Errorf("%w: %s: %v", ErrDirectoryService, op, cause))
}

// applyDirectoryResult 回写目录响应；会话已登出或结束时丢弃
func (s *Store) applyDirectoryResult(ctx context.Context, sid string, cmd Command) (any, error) {
	res, err := s.Apply(ctx, sid, cmd)
	if errors.Is(err, ErrStaleResponse) || (sid != "" && errors.Is(err, ErrSessionNotFound)) {
		s.logger.Info("discard stale directory response",
			zap.String("command", cmd.Name()),
			zap.String("session", sid))
		return nil, ErrStaleResponse
	}
	return res, err
}

// RefreshUsers 用目录服务的用户列表替换本地列表；未接入目录时无操作
func (s *Store) RefreshUsers(ctx context.Context, sid string) error {
	if s.directory == nil {
		return nil
	}
	epoch, err := s.sessionEpoch(sid)
	if err != nil {
		return err
	}
	list, err := s.directory.List(ctx)
	if err != nil {
		return s.directoryFailed(sid, "list_users", err)
	}
	_, err = s.applyDirectoryResult(ctx, sid, usersLoaded{epoch: epoch, users: list})
	return err
}

// CreateUser 创建普通用户。接入目录时先远程创建，成功后才写入本地列表。
func (s *Store) CreateUser(ctx context.Context, sid string, in user.NewUser) (user.User, error) {
	if !in.Complete() {
		return user.User{}, s.fail(sid, "create_user", ErrMissingUserFields)
	}
	epoch, err := s.sessionEpoch(sid)
	if err != nil {
		return user.User{}, err
	}

	var u user.User
	if s.directory != nil {
		created, err := s.directory.Create(ctx, in)
		if err != nil {
			return user.User{}, s.directoryFailed(sid, "create_user", err)
		}
		u = *created
	} else {
		salt := auth.NewSalt()
		u = user.User{
			ID:           user.NewID(),
			Name:         in.Name,
			Email:        in.Email,
			Address:      in.Address,
			Role:         user.RoleUser,
			Salt:         salt,
			PasswordHash: auth.HashPassword(in.Password, salt),
			CreatedAt:    s.now(),
		}
	}

	res, err := s.applyDirectoryResult(ctx, sid, userAdded{epoch: epoch, user: u})
	if err != nil {
		return user.User{}, err
	}
	return res.(user.User), nil
}

// RemoveUser 删除用户。接入目录时先远程删除。
func (s *Store) RemoveUser(ctx context.Context, sid, id string) error {
	epoch, err := s.sessionEpoch(sid)
	if err != nil {
		return err
	}
	if s.directory != nil {
		if err := s.directory.Delete(ctx, id); err != nil {
			return s.directoryFailed(sid, "remove_user", err)
		}
	}
	_, err = s.applyDirectoryResult(ctx, sid, userRemoved{epoch: epoch, id: id, strict: s.directory == nil})
	return err
}

// Users 当前用户列表（不含内置管理员）
func (s *Store) Users() []user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]user.User, len(s.users))
	copy(out, s.users)
	return out
}
