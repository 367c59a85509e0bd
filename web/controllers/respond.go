package controllers

import (
	"errors"

	"github.com/kataras/iris/v12"

	"github.com/example/asati/internal/store"
)

func ok(ctx iris.Context, data any) {
	_ = ctx.JSON(iris.Map{"code": 0, "msg": "ok", "data": data})
}

func created(ctx iris.Context, data any) {
	ctx.StatusCode(iris.StatusCreated)
	ok(ctx, data)
}

func badRequest(ctx iris.Context, msg string) {
	ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"code": iris.StatusBadRequest, "msg": msg})
}

// statusOf 仓库错误到 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, store.ErrInvalidCredentials):
		return iris.StatusUnauthorized
	case store.IsNotFound(err):
		return iris.StatusNotFound
	case errors.Is(err, store.ErrDuplicateCategory),
		errors.Is(err, store.ErrCategoryInUse),
		errors.Is(err, store.ErrOrderAlreadyDecided),
		errors.Is(err, store.ErrStaleResponse):
		return iris.StatusConflict
	case errors.Is(err, store.ErrDirectoryService):
		return iris.StatusBadGateway
	case store.IsClientError(err):
		return iris.StatusBadRequest
	}
	return iris.StatusInternalServerError
}

func fail(ctx iris.Context, err error) {
	code := statusOf(err)
	if code == iris.StatusInternalServerError {
		ctx.Application().Logger().Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
	}
	body := iris.Map{"code": code, "msg": err.Error()}
	var inUse *store.CategoryInUseError
	if errors.As(err, &inUse) {
		body["data"] = iris.Map{"category": inUse.Name, "count": inUse.Count}
	}
	ctx.StopWithJSON(code, body)
}
