package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/asati/internal/auth"
)

func (s *Store) login(sess *Session, c Login) (any, *Event, error) {
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	if strings.EqualFold(c.ID, adminID) && c.Password == adminPassword {
		sess.identity = Administrator{}
		sess.page = PageAdmin
		sess.epoch++
		s.monitor.RecordLogin()
		sess.notify(NotifySuccess, "Welcome Admin!")
		return sess.identity, nil, nil
	}
	for i := range s.users {
		u := s.users[i]
		if !strings.EqualFold(u.ID, c.ID) {
			continue
		}
		if !auth.VerifyPassword(c.Password, u.Salt, u.PasswordHash) {
			break
		}
		sess.identity = Customer{User: u}
		sess.page = PageMarketplace
		sess.epoch++
		s.monitor.RecordLogin()
		sess.notify(NotifySuccess, fmt.Sprintf("Welcome, %s!", u.Name))
		return sess.identity, nil, nil
	}
	s.monitor.RecordLoginFailure()
	return nil, nil, ErrInvalidCredentials
}

func (s *Store) logout(sess *Session) (any, *Event, error) {
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	sess.identity = Anonymous{}
	sess.page = PageLanding
	sess.cart = nil
	sess.selected = 0
	sess.epoch++
	sess.notify(NotifySuccess, "Logged out successfully.")
	return nil, nil, nil
}

func (s *Store) navigate(sess *Session, p Page) (any, *Event, error) {
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	if !p.Valid() {
		return nil, nil, ErrInvalidPage
	}
	sess.page = p
	return p, nil, nil
}

func (s *Store) goHome(sess *Session) (any, *Event, error) {
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	sess.selected = 0
	sess.page = homePage(sess.identity)
	return sess.page, nil, nil
}

func (s *Store) selectProduct(sess *Session, id int64) (any, *Event, error) {
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	idx, ok := s.findProduct(id)
	if !ok {
		return nil, nil, ErrProductNotFound
	}
	sess.selected = id
	return s.products[idx], nil, nil
}

func (s *Store) clearSelection(sess *Session) (any, *Event, error) {
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	sess.selected = 0
	return nil, nil, nil
}

// Login 登录；管理员登录成功后会从目录服务刷新用户列表，刷新失败不影响登录结果
func (s *Store) Login(ctx context.Context, sid, id, password string) (Identity, error) {
	res, err := s.Apply(ctx, sid, Login{ID: id, Password: password})
	if err != nil {
		return nil, err
	}
	identity := res.(Identity)
	if _, ok := identity.(Administrator); ok && s.directory != nil {
		if err := s.RefreshUsers(ctx, sid); err != nil {
			s.logger.Warn("refresh users after admin login failed", zap.Error(err))
		}
	}
	return identity, nil
}

// Logout 登出并清空购物车，可重复调用
func (s *Store) Logout(ctx context.Context, sid string) error {
	_, err := s.Apply(ctx, sid, Logout{})
	return err
}

// Navigate 切换页面
func (s *Store) Navigate(ctx context.Context, sid string, p Page) error {
	_, err := s.Apply(ctx, sid, Navigate{Page: p})
	return err
}

// Home 点击 Logo：按身份回到对应首页
func (s *Store) Home(ctx context.Context, sid string) (Page, error) {
	res, err := s.Apply(ctx, sid, GoHome{})
	if err != nil {
		return "", err
	}
	return res.(Page), nil
}
