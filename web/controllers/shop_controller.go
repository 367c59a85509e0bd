package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/asati/internal/datamodels/order"
	"github.com/example/asati/internal/middleware"
	"github.com/example/asati/internal/store"
)

// ShopController 前台商品浏览、购物车与下单
type ShopController struct {
	store *store.Store
}

// NewShopController 构造函数
func NewShopController(st *store.Store) *ShopController {
	return &ShopController{store: st}
}

// Products GET /api/products?category=
func (c *ShopController) Products(ctx iris.Context) {
	ok(ctx, c.store.ProductsByCategory(ctx.URLParam("category")))
}

// Product GET /api/products/{id}
func (c *ShopController) Product(ctx iris.Context) {
	id, err := ctx.Params().GetInt64("id")
	if err != nil {
		badRequest(ctx, "invalid product id")
		return
	}
	p, err := c.store.Product(id)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, p)
}

// Categories GET /api/categories
func (c *ShopController) Categories(ctx iris.Context) {
	ok(ctx, c.store.Categories())
}

// Cart GET /api/cart
func (c *ShopController) Cart(ctx iris.Context) {
	sum, err := c.store.Cart(middleware.SessionID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, sum)
}

// AddToCart POST /api/cart {product_id, quantity}
func (c *ShopController) AddToCart(ctx iris.Context) {
	var req struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	sum, err := c.store.AddToCart(ctx.Request().Context(), middleware.SessionID(ctx), req.ProductID, req.Quantity)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, sum)
}

// UpdateQuantity PUT /api/cart/{id} {quantity}，数量 <= 0 时移除
func (c *ShopController) UpdateQuantity(ctx iris.Context) {
	id, err := ctx.Params().GetInt64("id")
	if err != nil {
		badRequest(ctx, "invalid product id")
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	sum, err := c.store.UpdateQuantity(ctx.Request().Context(), middleware.SessionID(ctx), id, req.Quantity)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, sum)
}

// RemoveFromCart DELETE /api/cart/{id}
func (c *ShopController) RemoveFromCart(ctx iris.Context) {
	id, err := ctx.Params().GetInt64("id")
	if err != nil {
		badRequest(ctx, "invalid product id")
		return
	}
	sum, err := c.store.RemoveFromCart(ctx.Request().Context(), middleware.SessionID(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, sum)
}

// Checkout POST /api/orders
func (c *ShopController) Checkout(ctx iris.Context) {
	o, err := c.store.PlaceOrder(ctx.Request().Context(), middleware.SessionID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	created(ctx, o)
}

// MyOrders GET /api/orders：当前登录用户自己的订单
func (c *ShopController) MyOrders(ctx iris.Context) {
	id, err := c.store.Identity(middleware.SessionID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	var list []order.Order
	switch v := id.(type) {
	case store.Customer:
		list = c.store.OrdersForUser(v.User.ID)
	case store.Administrator:
		list = c.store.OrdersForUser(store.AdminProfile().ID)
	}
	if list == nil {
		list = []order.Order{}
	}
	ok(ctx, list)
}
