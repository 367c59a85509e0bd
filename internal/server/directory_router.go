package server

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/example/asati/internal/datamodels/user"
	"github.com/example/asati/internal/service"
)

// NewDirectoryApp 用户目录参考服务：GET/POST /users、GET/DELETE /users/:id。
// apiKey 非空时 /users 需要 Bearer 密钥；为空时接口开放，但响应里不带密码哈希和盐
func NewDirectoryApp(userSvc *service.UserService, apiKey string, log *zap.Logger) *fiber.App {
	if log == nil {
		log = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               "asati-directory",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				msg = fe.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": msg})
		},
	})

	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${method} ${path} - ${locals:requestid} - ${latency}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	var users fiber.Router
	view := func(u *user.User) user.User { return *u }
	if apiKey != "" {
		users = app.Group("/users", keyauth.New(keyauth.Config{
			Validator: func(c *fiber.Ctx, key string) (bool, error) {
				if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
					return true, nil
				}
				return false, keyauth.ErrMissingOrMalformedAPIKey
			},
		}))
	} else {
		users = app.Group("/users")
		view = func(u *user.User) user.User { return u.Redacted() }
	}

	users.Get("/", func(c *fiber.Ctx) error {
		list, err := userSvc.List(c.UserContext())
		if err != nil {
			log.Error("list users failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "could not list users")
		}
		out := make([]user.User, 0, len(list))
		for _, u := range list {
			out = append(out, view(u))
		}
		return c.JSON(out)
	})

	users.Get("/:id", func(c *fiber.Ctx) error {
		u, err := userSvc.Get(c.UserContext(), c.Params("id"))
		if errors.Is(err, service.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			log.Error("get user failed", zap.String("id", c.Params("id")), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "could not load user")
		}
		return c.JSON(view(u))
	})

	users.Post("/", func(c *fiber.Ctx) error {
		var in user.NewUser
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		u, err := userSvc.Create(c.UserContext(), in)
		if errors.Is(err, service.ErrIncompleteUser) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			log.Error("create user failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
		}
		log.Info("user created", zap.String("id", u.ID), zap.String("request_id", requestID(c)))
		return c.Status(fiber.StatusCreated).JSON(view(u))
	})

	users.Delete("/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		err := userSvc.Delete(c.UserContext(), id)
		if errors.Is(err, service.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			log.Error("delete user failed", zap.String("id", id), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete user")
		}
		log.Info("user deleted", zap.String("id", id), zap.String("request_id", requestID(c)))
		return c.SendStatus(fiber.StatusNoContent)
	})

	return app
}

func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestid").(string); ok {
		return v
	}
	return ""
}
