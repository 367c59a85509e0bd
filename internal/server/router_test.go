package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/asati/internal/auth"
	"github.com/example/asati/internal/config"
	"github.com/example/asati/internal/datamodels/user"
	"github.com/example/asati/internal/store"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, raw string) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env), raw)
	return env
}

func newDeps(t *testing.T) Deps {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RateLimit.Capacity = 0
	st := store.New(store.WithNotificationTTL(0))
	return Deps{
		Store:  st,
		Tokens: auth.NewTokenCache(nil, nil, 0, &cfg.JWT),
		Config: cfg,
	}
}

func newStorefront(t *testing.T, d Deps) *httptest.Expect {
	app := iris.New()
	RegisterRoutes(app, d)
	return httptest.New(t, app)
}

func newAdmin(t *testing.T, d Deps) *httptest.Expect {
	app := iris.New()
	RegisterAdminRoutes(app, d)
	return httptest.New(t, app)
}

type sessionResp struct {
	Token   string            `json:"token"`
	Session store.SessionView `json:"session"`
}

func openSession(t *testing.T, e *httptest.Expect) string {
	t.Helper()
	raw := e.POST("/api/session").Expect().Status(http.StatusCreated).Body().Raw()
	var s sessionResp
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &s))
	require.NotEmpty(t, s.Token)
	assert.Equal(t, store.PageLanding, s.Session.Page)
	return s.Token
}

func login(t *testing.T, e *httptest.Expect, token, id, password string) sessionResp {
	t.Helper()
	raw := e.POST("/api/login").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]string{"id": id, "password": password}).
		Expect().Status(http.StatusOK).Body().Raw()
	var s sessionResp
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &s))
	return s
}

func TestStorefrontCatalogIsPublic(t *testing.T) {
	e := newStorefront(t, newDeps(t))

	env := decode(t, e.GET("/api/products").Expect().Status(http.StatusOK).Body().Raw())
	var products []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 4)

	env = decode(t, e.GET("/api/products").WithQuery("category", "home decor").Expect().Status(http.StatusOK).Body().Raw())
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 2)

	e.GET("/api/products/999").Expect().Status(http.StatusNotFound)
	e.GET("/api/health").Expect().Status(http.StatusOK)
}

func TestStorefrontRequiresToken(t *testing.T) {
	e := newStorefront(t, newDeps(t))

	e.POST("/api/cart").WithJSON(map[string]any{"product_id": 1}).Expect().Status(http.StatusUnauthorized)
	e.GET("/api/state").WithHeader("Authorization", "Bearer nope").Expect().Status(http.StatusUnauthorized)
}

func TestStorefrontShoppingFlow(t *testing.T) {
	d := newDeps(t)
	u, err := d.Store.CreateUser(context.Background(), "", user.NewUser{
		Name: "Meera", Email: "meera@example.com", Password: "loom", Address: "Jaipur",
	})
	require.NoError(t, err)

	e := newStorefront(t, d)
	token := openSession(t, e)

	// 错误密码
	e.POST("/api/login").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]string{"id": u.ID, "password": "wrong"}).
		Expect().Status(http.StatusUnauthorized)

	s := login(t, e, token, u.ID, "loom")
	assert.Equal(t, store.PageMarketplace, s.Session.Page)
	assert.Equal(t, "user", s.Session.Identity.Kind)
	token = s.Token

	bearer := "Bearer " + token
	e.POST("/api/cart").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"product_id": 2, "quantity": 2}).
		Expect().Status(http.StatusOK)

	raw := e.GET("/api/cart").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).Body().Raw()
	var sum struct {
		ItemCount int             `json:"item_count"`
		Subtotal  decimal.Decimal `json:"subtotal"`
		Tax       decimal.Decimal `json:"tax"`
		Total     decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &sum))
	assert.Equal(t, 2, sum.ItemCount)
	assert.True(t, decimal.RequireFromString("119").Equal(sum.Subtotal), sum.Subtotal.String())
	assert.True(t, decimal.RequireFromString("11.9").Equal(sum.Tax), sum.Tax.String())
	assert.True(t, decimal.RequireFromString("130.9").Equal(sum.Total), sum.Total.String())

	raw = e.POST("/api/orders").WithHeader("Authorization", bearer).Expect().Status(http.StatusCreated).Body().Raw()
	var placed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &placed))
	assert.Equal(t, "pending", placed.Status)

	// 购物车已清空，再次下单失败
	e.POST("/api/orders").WithHeader("Authorization", bearer).Expect().Status(http.StatusBadRequest)

	raw = e.GET("/api/orders").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).Body().Raw()
	var mine []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, placed.ID, mine[0].ID)

	raw = e.GET("/api/notification").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).Body().Raw()
	var n store.Notification
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &n))
	assert.Equal(t, "Cannot place order.", n.Message)
	assert.Equal(t, store.NotifyError, n.Kind)
}

func TestStorefrontCartQuantityAndRemove(t *testing.T) {
	d := newDeps(t)
	u, err := d.Store.CreateUser(context.Background(), "", user.NewUser{
		Name: "Ravi", Email: "ravi@example.com", Password: "weave", Address: "Varanasi",
	})
	require.NoError(t, err)
	e := newStorefront(t, d)
	token := openSession(t, e)

	// 匿名会话不能加购
	e.POST("/api/cart").WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{"product_id": 3, "quantity": 1}).
		Expect().Status(http.StatusForbidden)

	bearer := "Bearer " + login(t, e, token, u.ID, "weave").Token

	e.POST("/api/cart").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"product_id": 3, "quantity": 0}).
		Expect().Status(http.StatusOK)
	raw := e.PUT("/api/cart/3").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"quantity": 5}).
		Expect().Status(http.StatusOK).Body().Raw()
	assert.Contains(t, string(decode(t, raw).Data), `"item_count":5`)

	raw = e.PUT("/api/cart/3").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"quantity": 0}).
		Expect().Status(http.StatusOK).Body().Raw()
	assert.Contains(t, string(decode(t, raw).Data), `"item_count":0`)

	e.POST("/api/cart").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"product_id": 42}).
		Expect().Status(http.StatusNotFound)
}

func TestStorefrontNavigation(t *testing.T) {
	e := newStorefront(t, newDeps(t))
	bearer := "Bearer " + openSession(t, e)

	e.POST("/api/navigate").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"page": "marketplace"}).
		Expect().Status(http.StatusOK)
	e.POST("/api/navigate").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"page": "checkout"}).
		Expect().Status(http.StatusBadRequest)

	e.POST("/api/select/1").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK)
	raw := e.GET("/api/state").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).Body().Raw()
	var view store.SessionView
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &view))
	require.NotNil(t, view.Selected)
	assert.EqualValues(t, 1, view.Selected.ID)

	raw = e.POST("/api/home").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).Body().Raw()
	assert.Contains(t, string(decode(t, raw).Data), `"landing"`)
}

func TestEndSessionRevokesToken(t *testing.T) {
	e := newStorefront(t, newDeps(t))
	bearer := "Bearer " + openSession(t, e)

	e.DELETE("/api/session").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK)
	e.GET("/api/state").WithHeader("Authorization", bearer).Expect().Status(http.StatusUnauthorized)
}

func TestStatusCodeForRateLimit(t *testing.T) {
	d := newDeps(t)
	d.Config.RateLimit = config.RateLimitConfig{Capacity: 1, RefillPerSecond: 0}
	e := newStorefront(t, d)

	e.GET("/api/categories").Expect().Status(http.StatusOK)
	e.GET("/api/categories").Expect().Status(http.StatusTooManyRequests)
}
