package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/asati/internal/auth"
	"github.com/example/asati/internal/config"
	"github.com/example/asati/internal/middleware"
	"github.com/example/asati/internal/store"
)

// SessionController 会话、登录与页面导航
type SessionController struct {
	store  *store.Store
	tokens *auth.TokenCache
	jwt    *config.JWTConfig
}

// NewSessionController 构造函数
func NewSessionController(st *store.Store, tokens *auth.TokenCache, jwt *config.JWTConfig) *SessionController {
	return &SessionController{store: st, tokens: tokens, jwt: jwt}
}

// issue 按会话当前身份签发令牌
func (c *SessionController) issue(sid string, id store.Identity) (string, error) {
	userID := ""
	if cu, ok := id.(store.Customer); ok {
		userID = cu.User.ID
	} else if _, ok := id.(store.Administrator); ok {
		userID = store.AdminProfile().ID
	}
	return auth.GenerateToken(c.jwt, sid, userID, id.Kind())
}

// Create POST /api/session：创建匿名会话
func (c *SessionController) Create(ctx iris.Context) {
	sid := c.store.NewSession()
	token, err := c.issue(sid, store.Anonymous{})
	if err != nil {
		_ = c.store.EndSession(sid)
		fail(ctx, err)
		return
	}
	view, err := c.store.Session(sid)
	if err != nil {
		fail(ctx, err)
		return
	}
	created(ctx, iris.Map{"token": token, "session": view})
}

// End DELETE /api/session
func (c *SessionController) End(ctx iris.Context) {
	if err := c.store.EndSession(middleware.SessionID(ctx)); err != nil {
		fail(ctx, err)
		return
	}
	_ = c.tokens.Invalidate(ctx.Request().Context(), middleware.Token(ctx))
	ok(ctx, nil)
}

// Login POST /api/login {id, password}
func (c *SessionController) Login(ctx iris.Context) {
	var req struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	sid := middleware.SessionID(ctx)
	id, err := c.store.Login(ctx.Request().Context(), sid, req.ID, req.Password)
	if err != nil {
		fail(ctx, err)
		return
	}
	c.respondWithToken(ctx, sid, id)
}

// Logout POST /api/logout
func (c *SessionController) Logout(ctx iris.Context) {
	sid := middleware.SessionID(ctx)
	if err := c.store.Logout(ctx.Request().Context(), sid); err != nil {
		fail(ctx, err)
		return
	}
	_ = c.tokens.Invalidate(ctx.Request().Context(), middleware.Token(ctx))
	c.respondWithToken(ctx, sid, store.Anonymous{})
}

func (c *SessionController) respondWithToken(ctx iris.Context, sid string, id store.Identity) {
	token, err := c.issue(sid, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	view, err := c.store.Session(sid)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, iris.Map{"token": token, "session": view})
}

// State GET /api/state
func (c *SessionController) State(ctx iris.Context) {
	view, err := c.store.Session(middleware.SessionID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, view)
}

// Navigate POST /api/navigate {page}
func (c *SessionController) Navigate(ctx iris.Context) {
	var req struct {
		Page store.Page `json:"page"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	if err := c.store.Navigate(ctx.Request().Context(), middleware.SessionID(ctx), req.Page); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, iris.Map{"page": req.Page})
}

// Home POST /api/home
func (c *SessionController) Home(ctx iris.Context) {
	page, err := c.store.Home(ctx.Request().Context(), middleware.SessionID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, iris.Map{"page": page})
}

// Select POST /api/select/{id}
func (c *SessionController) Select(ctx iris.Context) {
	id, err := ctx.Params().GetInt64("id")
	if err != nil {
		badRequest(ctx, "invalid product id")
		return
	}
	p, err := c.store.SelectProduct(ctx.Request().Context(), middleware.SessionID(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, p)
}

// ClearSelection DELETE /api/select
func (c *SessionController) ClearSelection(ctx iris.Context) {
	if err := c.store.ClearSelection(ctx.Request().Context(), middleware.SessionID(ctx)); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, nil)
}

// Notification GET /api/notification
func (c *SessionController) Notification(ctx iris.Context) {
	n, err := c.store.Notification(middleware.SessionID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, n)
}

// DismissNotification DELETE /api/notification
func (c *SessionController) DismissNotification(ctx iris.Context) {
	if err := c.store.DismissNotification(ctx.Request().Context(), middleware.SessionID(ctx)); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, nil)
}
