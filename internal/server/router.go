package server

import (
	"github.com/kataras/iris/v12"

	"github.com/example/asati/internal/auth"
	"github.com/example/asati/internal/config"
	"github.com/example/asati/internal/middleware"
	"github.com/example/asati/internal/store"
	webcontrollers "github.com/example/asati/web/controllers"
)

// Deps 前台与后台共享的依赖，两个 iris 应用操作同一个 Store
type Deps struct {
	Store  *store.Store
	Tokens *auth.TokenCache
	Config *config.Config
}

func registerSessionRoutes(api iris.Party, d Deps, sessionAuth iris.Handler) *webcontrollers.SessionController {
	sc := webcontrollers.NewSessionController(d.Store, d.Tokens, &d.Config.JWT)
	api.Post("/session", sc.Create)
	api.Delete("/session", sessionAuth, sc.End)
	api.Post("/login", sessionAuth, sc.Login)
	api.Post("/logout", sessionAuth, sc.Logout)
	api.Get("/state", sessionAuth, sc.State)
	return sc
}

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, d Deps) {
	api := app.Party("/api", middleware.RateLimit(d.Config.RateLimit))

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		_ = ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
			"data": iris.Map{"sessions": d.Store.SessionCount()},
		})
	})

	sessionAuth := middleware.SessionAuth(d.Tokens, d.Store)
	sc := registerSessionRoutes(api, d, sessionAuth)
	shop := webcontrollers.NewShopController(d.Store)

	// 商品目录无需会话
	api.Get("/products", shop.Products)
	api.Get("/products/{id:int64}", shop.Product)
	api.Get("/categories", shop.Categories)

	// 需要会话的接口
	authAPI := api.Party("/", sessionAuth)

	authAPI.Post("/navigate", sc.Navigate)
	authAPI.Post("/home", sc.Home)
	authAPI.Post("/select/{id:int64}", sc.Select)
	authAPI.Delete("/select", sc.ClearSelection)
	authAPI.Get("/notification", sc.Notification)
	authAPI.Delete("/notification", sc.DismissNotification)

	authAPI.Get("/cart", shop.Cart)
	authAPI.Post("/cart", middleware.RequireLogin(d.Store), shop.AddToCart)
	authAPI.Put("/cart/{id:int64}", shop.UpdateQuantity)
	authAPI.Delete("/cart/{id:int64}", shop.RemoveFromCart)

	authAPI.Post("/orders", shop.Checkout)
	authAPI.Get("/orders", shop.MyOrders)
}
