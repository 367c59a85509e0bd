package middleware

import (
	"strings"

	"github.com/kataras/iris/v12"

	"github.com/example/asati/internal/auth"
	"github.com/example/asati/internal/store"
)

const (
	sessionKey = "session_id"
	tokenKey   = "session_token"
)

// BearerToken 读取 Authorization 头，兼容不带 Bearer 前缀的写法
func BearerToken(ctx iris.Context) string {
	h := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

// SessionAuth 校验令牌并确认服务端会话仍然存在
func SessionAuth(tokens *auth.TokenCache, st *store.Store) iris.Handler {
	return func(ctx iris.Context) {
		token := BearerToken(ctx)
		if token == "" {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": "missing token"})
			return
		}
		claims, err := tokens.Resolve(ctx.Request().Context(), token)
		if err != nil || claims.SessionID == "" {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": "invalid token"})
			return
		}
		if _, err := st.Identity(claims.SessionID); err != nil {
			_ = tokens.Invalidate(ctx.Request().Context(), token)
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": "session expired"})
			return
		}
		ctx.Values().Set(sessionKey, claims.SessionID)
		ctx.Values().Set(tokenKey, token)
		ctx.Next()
	}
}

// RequireAdmin 会话身份必须是管理员；需放在 SessionAuth 之后
func RequireAdmin(st *store.Store) iris.Handler {
	return func(ctx iris.Context) {
		id, err := st.Identity(SessionID(ctx))
		if err != nil {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": "session expired"})
			return
		}
		if _, ok := id.(store.Administrator); !ok {
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"code": iris.StatusForbidden, "msg": "admin only"})
			return
		}
		ctx.Next()
	}
}

// RequireLogin 匿名会话不能加购，前端收到 403 后弹出登录框
func RequireLogin(st *store.Store) iris.Handler {
	return func(ctx iris.Context) {
		id, err := st.Identity(SessionID(ctx))
		if err != nil {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"code": iris.StatusUnauthorized, "msg": "session expired"})
			return
		}
		if _, anon := id.(store.Anonymous); anon {
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"code": iris.StatusForbidden, "msg": "login required"})
			return
		}
		ctx.Next()
	}
}

// SessionID 当前请求的会话 ID
func SessionID(ctx iris.Context) string {
	return ctx.Values().GetString(sessionKey)
}

// Token 当前请求携带的令牌
func Token(ctx iris.Context) string {
	return ctx.Values().GetString(tokenKey)
}
