package store

import (
	"errors"
	"fmt"
)

// 所有错误都在本地恢复：写入会话通知并返回给调用方，不会导致进程退出
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDuplicateCategory    = errors.New("category already exists")
	ErrCategoryInUse        = errors.New("category in use")
	ErrEmptyCartOrNoSession = errors.New("cannot place order: empty cart or no session")
	ErrDirectoryService     = errors.New("user directory service failure")

	ErrSessionNotFound     = errors.New("session not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrBlankCategory       = errors.New("category name is empty")
	ErrInvalidProduct      = errors.New("product price and inventory must not be negative")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderAlreadyDecided = errors.New("order already decided")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidPage         = errors.New("invalid page")
	ErrMissingUserFields   = errors.New("missing user fields")
	ErrUserNotFound        = errors.New("user not found")
	ErrStaleResponse       = errors.New("stale directory response")
)

// CategoryInUseError 分类仍被商品引用，Count 为引用数量
type CategoryInUseError struct {
	Name  string
	Count int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %q is used by %d product(s)", e.Name, e.Count)
}

// Unwrap 支持 errors.Is(err, ErrCategoryInUse)
func (e *CategoryInUseError) Unwrap() error {
	return ErrCategoryInUse
}

// IsClientError 判断错误是否由调用方输入引起
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateCategory) ||
		errors.Is(err, ErrCategoryInUse) ||
		errors.Is(err, ErrEmptyCartOrNoSession) ||
		errors.Is(err, ErrBlankCategory) ||
		errors.Is(err, ErrInvalidProduct) ||
		errors.Is(err, ErrOrderAlreadyDecided) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidPage) ||
		errors.Is(err, ErrMissingUserFields)
}

// IsNotFound 判断是否为“不存在”类错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
