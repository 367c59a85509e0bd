package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/asati/internal/datamodels/order"
	"github.com/example/asati/internal/datamodels/product"
	"github.com/example/asati/internal/datamodels/user"
)

// Command 一次状态修改
type Command interface {
	Name() string
}

// 会话
type (
	Login struct {
		ID       string
		Password string
	}
	Logout              struct{}
	Navigate            struct{ Page Page }
	GoHome              struct{}
	SelectProduct       struct{ ID int64 }
	ClearSelection      struct{}
	DismissNotification struct{}
)

// 目录
type (
	SaveProduct    struct{ Product product.Product }
	DeleteProduct  struct{ ID int64 }
	CreateCategory struct{ Title string }
	DeleteCategory struct{ ID string }
)

// 购物车与订单
type (
	AddToCart struct {
		ProductID int64
		Quantity  int
	}
	RemoveFromCart struct{ ProductID int64 }
	UpdateQuantity struct {
		ProductID int64
		Quantity  int
	}
	PlaceOrder        struct{}
	UpdateOrderStatus struct {
		OrderID string
		Status  string
	}
)

// 目录服务响应回写，epoch 为发起调用时会话的纪元
type (
	usersLoaded struct {
		epoch uint64
		users []user.User
	}
	userAdded struct {
		epoch uint64
		user  user.User
	}
	userRemoved struct {
		epoch  uint64
		id     string
		strict bool // 未接入目录时，用户不存在视为错误
	}
)

func (Login) Name() string               { return "login" }
func (Logout) Name() string              { return "logout" }
func (Navigate) Name() string            { return "navigate" }
func (GoHome) Name() string              { return "go_home" }
func (SelectProduct) Name() string       { return "select_product" }
func (ClearSelection) Name() string      { return "clear_selection" }
func (DismissNotification) Name() string { return "dismiss_notification" }
func (SaveProduct) Name() string         { return "save_product" }
func (DeleteProduct) Name() string       { return "delete_product" }
func (CreateCategory) Name() string      { return "create_category" }
func (DeleteCategory) Name() string      { return "delete_category" }
func (AddToCart) Name() string           { return "add_to_cart" }
func (RemoveFromCart) Name() string      { return "remove_from_cart" }
func (UpdateQuantity) Name() string      { return "update_quantity" }
func (PlaceOrder) Name() string          { return "place_order" }
func (UpdateOrderStatus) Name() string   { return "update_order_status" }
func (usersLoaded) Name() string         { return "users_loaded" }
func (userAdded) Name() string           { return "user_added" }
func (userRemoved) Name() string         { return "user_removed" }

// EventType 事件类型
type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderStatusChanged EventType = "order.status_changed"
)

// Event 命令产生的领域事件
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Order     order.Order `json:"order"`
	At        time.Time   `json:"occurred_at"`
}

// AuditEntry 审计日志条目
type AuditEntry struct {
	Seq       int64     `json:"seq"`
	At        time.Time `json:"at"`
	SessionID string    `json:"session_id,omitempty"`
	Command   string    `json:"command"`
	Error     string    `json:"error,omitempty"`
}

// Apply 唯一的修改入口：加锁执行命令、写审计日志、失败时写会话通知，解锁后投递事件。
// sid 为空表示系统调用（无会话、无通知）。
func (s *Store) Apply(ctx context.Context, sid string, cmd Command) (any, error) {
	s.mu.Lock()
	res, ev, err := s.apply(sid, cmd)
	s.record(sid, cmd, err)
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("command rejected",
			zap.String("command", cmd.Name()),
			zap.String("session", sid),
			zap.Error(err))
		return nil, err
	}
	if ev != nil {
		s.publish(ctx, ev)
	}
	return res, nil
}

func (s *Store) apply(sid string, cmd Command) (any, *Event, error) {
	var sess *Session
	if sid != "" {
		var err error
		if sess, err = s.session(sid); err != nil {
			return nil, nil, err
		}
		sess.lastSeen = s.now()
	}

	res, ev, err := s.dispatch(sess, cmd)
	if err != nil && sess != nil {
		if msg := failureMessage(err); msg != "" {
			sess.notify(NotifyError, msg)
		}
	}
	if ev != nil && sess != nil {
		ev.SessionID = sess.ID
	}
	return res, ev, err
}

func (s *Store) dispatch(sess *Session, cmd Command) (any, *Event, error) {
	switch c := cmd.(type) {
	case Login:
		return s.login(sess, c)
	case Logout:
		return s.logout(sess)
	case Navigate:
		return s.navigate(sess, c.Page)
	case GoHome:
		return s.goHome(sess)
	case SelectProduct:
		return s.selectProduct(sess, c.ID)
	case ClearSelection:
		return s.clearSelection(sess)
	case DismissNotification:
		if sess == nil {
			return nil, nil, ErrSessionNotFound
		}
		sess.notifier.Dismiss()
		return nil, nil, nil
	case SaveProduct:
		return s.saveProduct(sess, c.Product)
	case DeleteProduct:
		return s.deleteProduct(sess, c.ID)
	case CreateCategory:
		return s.createCategory(sess, c.Title)
	case DeleteCategory:
		return s.deleteCategory(sess, c.ID)
	case AddToCart:
		return s.addToCart(sess, c.ProductID, c.Quantity)
	case RemoveFromCart:
		return s.removeFromCart(sess, c.ProductID)
	case UpdateQuantity:
		return s.updateQuantity(sess, c.ProductID, c.Quantity)
	case PlaceOrder:
		return s.placeOrder(sess)
	case UpdateOrderStatus:
		return s.updateOrderStatus(sess, c.OrderID, c.Status)
	case usersLoaded:
		return s.applyUsersLoaded(sess, c)
	case userAdded:
		return s.applyUserAdded(sess, c)
	case userRemoved:
		return s.applyUserRemoved(sess, c)
	}
	return nil, nil, fmt.Errorf("unknown command %T", cmd)
}

// record 需持有锁
func (s *Store) record(sid string, cmd Command, err error) {
	s.auditSeq++
	e := AuditEntry{
		Seq:       s.auditSeq,
		At:        s.now(),
		SessionID: sid,
		Command:   cmd.Name(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	s.audit = append(s.audit, e)
	if over := len(s.audit) - s.auditLimit; over > 0 {
		s.audit = append(s.audit[:0:0], s.audit[over:]...)
	}
}

// Audit 审计日志（旧 -> 新）
func (s *Store) Audit() []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

func (s *Store) publish(ctx context.Context, ev *Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, *ev); err != nil {
		s.monitor.RecordPublishError()
		s.logger.Warn("publish event failed",
			zap.String("type", string(ev.Type)),
			zap.String("order_id", ev.Order.ID),
			zap.Error(err))
	}
}

// failureMessage 失败时展示给用户的提示，空串表示不提示
func failureMessage(err error) string {
	var inUse *CategoryInUseError
	switch {
	case errors.As(err, &inUse):
		return fmt.Sprintf("Cannot delete category. %d product(s) are using it.", inUse.Count)
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials. Please try again."
	case errors.Is(err, ErrDuplicateCategory):
		return "Category already exists."
	case errors.Is(err, ErrEmptyCartOrNoSession):
		return "Cannot place order."
	case errors.Is(err, ErrMissingUserFields):
		return "Please fill all fields."
	case errors.Is(err, ErrDirectoryService):
		return "User directory is unavailable. Please try again later."
	case errors.Is(err, ErrOrderAlreadyDecided):
		return "Order has already been decided."
	case errors.Is(err, ErrStaleResponse):
		return ""
	}
	return err.Error()
}

func needSession(sess *Session) error {
	if sess == nil {
		return ErrSessionNotFound
	}
	return nil
}

// notifySuccess 系统调用时 sess 为 nil
func notifySuccess(sess *Session, msg string) {
	if sess != nil {
		sess.notify(NotifySuccess, msg)
	}
}
