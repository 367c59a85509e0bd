package store

import (
	"context"
	"fmt"

	"github.com/example/asati/internal/datamodels/cart"
	"github.com/example/asati/internal/datamodels/order"
)

func (s *Store) placeOrder(sess *Session) (any, *Event, error) {
	if sess == nil {
		return nil, nil, ErrEmptyCartOrNoSession
	}
	userID, name, ok := owner(sess.identity)
	if !ok || len(sess.cart) == 0 {
		return nil, nil, ErrEmptyCartOrNoSession
	}
	now := s.now()
	o := order.Order{
		ID:       fmt.Sprintf("order-%d", s.orderIDs.next(now)),
		UserID:   userID,
		UserName: name,
		Items:    cart.Clone(sess.cart),
		Total:    cart.Total(sess.cart),
		PlacedAt: now,
		Status:   order.StatusPending,
	}
	s.orders = append([]order.Order{o}, s.orders...)
	sess.cart = nil
	s.monitor.RecordOrderPlaced()
	sess.notify(NotifySuccess, "Order placed successfully!")
	return o.Clone(), &Event{Type: EventOrderPlaced, Order: o.Clone(), At: now}, nil
}

// updateOrderStatus 只允许 pending -> approved / declined，终态不可再变更
func (s *Store) updateOrderStatus(sess *Session, id, status string) (any, *Event, error) {
	next, ok := order.ParseDecision(status)
	if !ok {
		return nil, nil, ErrInvalidStatus
	}
	idx := -1
	for i := range s.orders {
		if s.orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, ErrOrderNotFound
	}
	if s.orders[idx].Status.Decided() {
		return nil, nil, fmt.Errorf("%w: %s is %s", ErrOrderAlreadyDecided, id, s.orders[idx].Status)
	}
	s.orders[idx].Status = next
	s.monitor.RecordOrderDecided()
	notifySuccess(sess, fmt.Sprintf("Order %s %s.", id, next))
	o := s.orders[idx].Clone()
	return o, &Event{Type: EventOrderStatusChanged, Order: o.Clone(), At: s.now()}, nil
}

// PlaceOrder 下单：需登录且购物车非空，成功后清空购物车
func (s *Store) PlaceOrder(ctx context.Context, sid string) (order.Order, error) {
	res, err := s.Apply(ctx, sid, PlaceOrder{})
	if err != nil {
		return order.Order{}, err
	}
	return res.(order.Order), nil
}

// UpdateOrderStatus 审核订单
func (s *Store) UpdateOrderStatus(ctx context.Context, sid, id, status string) (order.Order, error) {
	res, err := s.Apply(ctx, sid, UpdateOrderStatus{OrderID: id, Status: status})
	if err != nil {
		return order.Order{}, err
	}
	return res.(order.Order), nil
}

// Orders 按条件筛选订单（新 -> 旧）
func (s *Store) Orders(f order.Filter) []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]order.Order, 0, len(s.orders))
	for i := range s.orders {
		if f.Match(&s.orders[i]) {
			out = append(out, s.orders[i].Clone())
		}
	}
	return out
}

// OrdersForUser 某个用户自己的订单
func (s *Store) OrdersForUser(userID string) []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for i := range s.orders {
		if s.orders[i].UserID == userID {
			out = append(out, s.orders[i].Clone())
		}
	}
	return out
}

// Order 按订单号查询
func (s *Store) Order(id string) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			return s.orders[i].Clone(), nil
		}
	}
	return order.Order{}, ErrOrderNotFound
}

// PendingCount 待审核订单数（后台角标）
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.orders {
		if s.orders[i].Status == order.StatusPending {
			n++
		}
	}
	return n
}
