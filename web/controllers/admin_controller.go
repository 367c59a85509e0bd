package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/asati/internal/datamodels/order"
	"github.com/example/asati/internal/datamodels/product"
	"github.com/example/asati/internal/datamodels/user"
	"github.com/example/asati/internal/middleware"
	"github.com/example/asati/internal/store"
)

// AdminController 后台：商品、分类、用户、订单审核与运行统计
type AdminController struct {
	store *store.Store
}

// NewAdminController 构造函数
func NewAdminController(st *store.Store) *AdminController {
	return &AdminController{store: st}
}

func (c *AdminController) readProduct(ctx iris.Context) (product.Product, bool) {
	var p product.Product
	if err := ctx.ReadJSON(&p); err != nil {
		badRequest(ctx, err.Error())
		return p, false
	}
	if p.Name == "" || p.Price.IsNegative() || p.Inventory < 0 {
		badRequest(ctx, "name is required, price and inventory must not be negative")
		return p, false
	}
	return p, true
}

func (c *AdminController) Products(ctx iris.Context) {
	ok(ctx, c.store.ProductsByCategory(ctx.URLParam("category")))
}

// CreateProduct POST /api/products，ID 由仓库分配
func (c *AdminController) CreateProduct(ctx iris.Context) {
	p, valid := c.readProduct(ctx)
	if !valid {
		return
	}
	p.ID = 0
	saved, err := c.store.SaveProduct(ctx.Request().Context(), middleware.SessionID(ctx), p)
	if err != nil {
		fail(ctx, err)
		return
	}
	created(ctx, saved)
}

// UpdateProduct PUT /api/products/{id}，整体替换
func (c *AdminController) UpdateProduct(ctx iris.Context) {
	id, err := ctx.Params().GetInt64("id")
	if err != nil || id == 0 {
		badRequest(ctx, "invalid product id")
		return
	}
	p, valid := c.readProduct(ctx)
	if !valid {
		return
	}
	p.ID = id
	saved, err := c.store.SaveProduct(ctx.Request().Context(), middleware.SessionID(ctx), p)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, saved)
}

func (c *AdminController) DeleteProduct(ctx iris.Context) {
	id, err := ctx.Params().GetInt64("id")
	if err != nil {
		badRequest(ctx, "invalid product id")
		return
	}
	if err := c.store.DeleteProduct(ctx.Request().Context(), middleware.SessionID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, nil)
}

func (c *AdminController) Categories(ctx iris.Context) {
	ok(ctx, c.store.Categories())
}

func (c *AdminController) CreateCategory(ctx iris.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	cat, err := c.store.CreateCategory(ctx.Request().Context(), middleware.SessionID(ctx), req.Name)
	if err != nil {
		fail(ctx, err)
		return
	}
	created(ctx, cat)
}

// DeleteCategory 被引用时返回 409，data 中带引用数量
func (c *AdminController) DeleteCategory(ctx iris.Context) {
	if err := c.store.DeleteCategory(ctx.Request().Context(), middleware.SessionID(ctx), ctx.Params().Get("id")); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, nil)
}

// userView 对外隐藏密码哈希与盐
type userView struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Address string    `json:"address"`
	Role    user.Role `json:"role"`
}

func viewOfUser(u user.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Role: u.Role}
}

func (c *AdminController) Users(ctx iris.Context) {
	users := c.store.Users()
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, viewOfUser(u))
	}
	ok(ctx, out)
}

func (c *AdminController) CreateUser(ctx iris.Context) {
	var in user.NewUser
	if err := ctx.ReadJSON(&in); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	u, err := c.store.CreateUser(ctx.Request().Context(), middleware.SessionID(ctx), in)
	if err != nil {
		fail(ctx, err)
		return
	}
	created(ctx, viewOfUser(u))
}

func (c *AdminController) DeleteUser(ctx iris.Context) {
	if err := c.store.RemoveUser(ctx.Request().Context(), middleware.SessionID(ctx), ctx.Params().Get("id")); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, nil)
}

// RefreshUsers POST /api/users/refresh
func (c *AdminController) RefreshUsers(ctx iris.Context) {
	if err := c.store.RefreshUsers(ctx.Request().Context(), middleware.SessionID(ctx)); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, iris.Map{"count": len(c.store.Users()), "directory": c.store.HasDirectory()})
}

// Orders GET /api/orders?status=&q=
func (c *AdminController) Orders(ctx iris.Context) {
	f := order.Filter{
		Status: order.Status(ctx.URLParam("status")),
		Query:  ctx.URLParam("q"),
	}
	ok(ctx, iris.Map{
		"orders":  c.store.Orders(f),
		"pending": c.store.PendingCount(),
	})
}

// UpdateOrderStatus PUT /api/orders/{id}/status {status}
func (c *AdminController) UpdateOrderStatus(ctx iris.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	o, err := c.store.UpdateOrderStatus(ctx.Request().Context(), middleware.SessionID(ctx), ctx.Params().Get("id"), req.Status)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, o)
}

func (c *AdminController) Monitor(ctx iris.Context) {
	stats := c.store.Monitor().GetStats()
	stats["sessions"] = c.store.SessionCount()
	ok(ctx, stats)
}

// ResetMonitor DELETE /api/monitor 清零统计，会话数不受影响
func (c *AdminController) ResetMonitor(ctx iris.Context) {
	c.store.Monitor().Reset()
	c.Monitor(ctx)
}

func (c *AdminController) Audit(ctx iris.Context) {
	ok(ctx, c.store.Audit())
}
