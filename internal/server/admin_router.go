package server

import (
	"github.com/kataras/iris/v12"

	"github.com/example/asati/internal/middleware"
	webcontrollers "github.com/example/asati/web/controllers"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台服务分离；会话与前台共享，admin/admin 登录后的令牌两边通用。
func RegisterAdminRoutes(app *iris.Application, d Deps) {
	api := app.Party("/api", middleware.RateLimit(d.Config.RateLimit))

	api.Get("/health", func(ctx iris.Context) {
		_ = ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
			"data": iris.Map{"pending_orders": d.Store.PendingCount()},
		})
	})

	sessionAuth := middleware.SessionAuth(d.Tokens, d.Store)
	registerSessionRoutes(api, d, sessionAuth)

	ac := webcontrollers.NewAdminController(d.Store)
	admin := api.Party("/", sessionAuth, middleware.RequireAdmin(d.Store))

	// ---------- 商品管理 ----------
	admin.Get("/products", ac.Products)
	admin.Post("/products", ac.CreateProduct)
	admin.Put("/products/{id:int64}", ac.UpdateProduct)
	admin.Delete("/products/{id:int64}", ac.DeleteProduct)

	// ---------- 分类管理 ----------
	admin.Get("/categories", ac.Categories)
	admin.Post("/categories", ac.CreateCategory)
	admin.Delete("/categories/{id:string}", ac.DeleteCategory)

	// ---------- 用户管理 ----------
	admin.Get("/users", ac.Users)
	admin.Post("/users", ac.CreateUser)
	admin.Post("/users/refresh", ac.RefreshUsers)
	admin.Delete("/users/{id:string}", ac.DeleteUser)

	// ---------- 订单审核 ----------
	admin.Get("/orders", ac.Orders)
	admin.Put("/orders/{id:string}/status", ac.UpdateOrderStatus)

	// ---------- 监控 ----------
	admin.Get("/monitor", ac.Monitor)
	admin.Delete("/monitor", ac.ResetMonitor)
	admin.Get("/audit", ac.Audit)
}
