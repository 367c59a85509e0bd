package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/asati/internal/datamodels/user"
)

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestAdminRequiresAdministrator(t *testing.T) {
	d := newDeps(t)
	e := newAdmin(t, d)

	e.GET("/api/products").Expect().Status(http.StatusUnauthorized)

	token := openSession(t, e)
	e.GET("/api/products").WithHeader("Authorization", "Bearer "+token).Expect().Status(http.StatusForbidden)

	s := login(t, e, token, "ADMIN", "admin")
	assert.Equal(t, "admin", s.Session.Identity.Kind)
	e.GET("/api/products").WithHeader("Authorization", "Bearer "+s.Token).Expect().Status(http.StatusOK)

	// 管理员不在用户列表中
	raw := e.GET("/api/users").WithHeader("Authorization", "Bearer "+s.Token).Expect().Status(http.StatusOK).Body().Raw()
	assert.JSONEq(t, `[]`, string(decode(t, raw).Data))
}

func TestAdminCatalogManagement(t *testing.T) {
	d := newDeps(t)
	e := newAdmin(t, d)
	bearer := "Bearer " + login(t, e, openSession(t, e), "admin", "admin").Token

	raw := e.POST("/api/categories").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"name": "Accessories"}).
		Expect().Status(http.StatusCreated).Body().Raw()
	var cat struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &cat))
	assert.Equal(t, "Accessories", cat.Name)

	e.POST("/api/categories").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"name": "clothing"}).
		Expect().Status(http.StatusConflict)

	// Clothing 被两个商品引用
	raw = e.DELETE("/api/categories/c1").WithHeader("Authorization", bearer).
		Expect().Status(http.StatusConflict).Body().Raw()
	assert.JSONEq(t, `{"category":"Clothing","count":2}`, string(decode(t, raw).Data))

	e.DELETE("/api/categories/"+cat.ID).WithHeader("Authorization", bearer).Expect().Status(http.StatusOK)

	raw = e.POST("/api/products").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"name": "Ikat Stole", "price": "35.00", "category": "Clothing"}).
		Expect().Status(http.StatusCreated).Body().Raw()
	var p struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &p))
	assert.NotZero(t, p.ID)
	assert.Len(t, d.Store.Products(), 5)
	assert.Equal(t, "Ikat Stole", d.Store.Products()[0].Name)

	e.PUT("/api/products/"+jsonInt(p.ID)).WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"name": "Ikat Silk Stole", "price": "45", "category": "Clothing"}).
		Expect().Status(http.StatusOK)
	got, err := d.Store.Product(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ikat Silk Stole", got.Name)

	e.PUT("/api/products/777").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"name": "Ghost", "price": "1"}).
		Expect().Status(http.StatusNotFound)
	e.POST("/api/products").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"name": "Bad", "price": "-1"}).
		Expect().Status(http.StatusBadRequest)
	e.POST("/api/products").WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"name": "Bad Stock", "price": "5", "inventory": -5}).
		Expect().Status(http.StatusBadRequest)
	e.PUT("/api/products/"+jsonInt(p.ID)).WithHeader("Authorization", bearer).
		WithJSON(map[string]any{"name": "Ikat Silk Stole", "price": "45", "inventory": -1}).
		Expect().Status(http.StatusBadRequest)
	assert.Len(t, d.Store.Products(), 5)

	e.DELETE("/api/products/"+jsonInt(p.ID)).WithHeader("Authorization", bearer).Expect().Status(http.StatusOK)
	assert.Len(t, d.Store.Products(), 4)
}

func TestAdminUsersAndOrders(t *testing.T) {
	d := newDeps(t)
	e := newAdmin(t, d)
	bearer := "Bearer " + login(t, e, openSession(t, e), "admin", "admin").Token
	ctx := context.Background()

	e.POST("/api/users").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"name": "Ravi", "email": "ravi@example.com"}).
		Expect().Status(http.StatusBadRequest)

	raw := e.POST("/api/users").WithHeader("Authorization", bearer).
		WithJSON(user.NewUser{Name: "Ravi", Email: "ravi@example.com", Password: "weave", Address: "Varanasi"}).
		Expect().Status(http.StatusCreated).Body().Raw()
	var created map[string]any
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &created))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.NotContains(t, created, "password_hash")

	// 用户在前台下单
	sid := d.Store.NewSession()
	_, err := d.Store.Login(ctx, sid, id, "weave")
	require.NoError(t, err)
	_, err = d.Store.AddToCart(ctx, sid, 3, 1)
	require.NoError(t, err)
	o, err := d.Store.PlaceOrder(ctx, sid)
	require.NoError(t, err)

	raw = e.GET("/api/orders").WithQuery("status", "pending").WithQuery("q", "ravi").
		WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).Body().Raw()
	var listing struct {
		Orders  []struct{ ID string } `json:"orders"`
		Pending int                   `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &listing))
	require.Len(t, listing.Orders, 1)
	assert.Equal(t, o.ID, listing.Orders[0].ID)
	assert.Equal(t, 1, listing.Pending)

	e.PUT("/api/orders/"+o.ID+"/status").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"status": "shipped"}).
		Expect().Status(http.StatusBadRequest)
	e.PUT("/api/orders/"+o.ID+"/status").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"status": "approved"}).
		Expect().Status(http.StatusOK)
	e.PUT("/api/orders/"+o.ID+"/status").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"status": "declined"}).
		Expect().Status(http.StatusConflict)
	e.PUT("/api/orders/order-0/status").WithHeader("Authorization", bearer).
		WithJSON(map[string]string{"status": "approved"}).
		Expect().Status(http.StatusNotFound)

	e.DELETE("/api/users/"+id).WithHeader("Authorization", bearer).Expect().Status(http.StatusOK)
	e.DELETE("/api/users/"+id).WithHeader("Authorization", bearer).Expect().Status(http.StatusNotFound)

	raw = e.GET("/api/monitor").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).Body().Raw()
	assert.Contains(t, string(decode(t, raw).Data), `"sessions":2`)
	assert.NotZero(t, d.Store.Monitor().OrdersPlaced)

	raw = e.DELETE("/api/monitor").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).Body().Raw()
	var stats struct {
		Business struct {
			Logins       int64 `json:"logins"`
			OrdersPlaced int64 `json:"orders_placed"`
		} `json:"business"`
		Sessions int `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &stats))
	assert.Zero(t, stats.Business.Logins)
	assert.Zero(t, stats.Business.OrdersPlaced)
	assert.Equal(t, 2, stats.Sessions)
	assert.True(t, d.Store.Monitor().LastOrder.IsZero())
	e.GET("/api/audit").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK)
	e.POST("/api/users/refresh").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK)
}
