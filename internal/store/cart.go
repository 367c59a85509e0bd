package store

import (
	"context"
	"fmt"

	"github.com/example/asati/internal/datamodels/cart"
)

func (s *Store) addToCart(sess *Session, productID int64, qty int) (any, *Event, error) {
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	idx, ok := s.findProduct(productID)
	if !ok {
		return nil, nil, ErrProductNotFound
	}
	if qty < 1 {
		qty = 1
	}
	p := s.products[idx]
	merged := false
	for i := range sess.cart {
		if sess.cart[i].Product.ID == productID {
			sess.cart[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		sess.cart = append(sess.cart, cart.Item{Product: p, Quantity: qty})
	}
	s.monitor.RecordCartAdd()
	sess.notify(NotifySuccess, fmt.Sprintf("%s added to cart!", p.Name))
	return cart.Summarize(sess.cart), nil, nil
}

func (s *Store) removeFromCart(sess *Session, productID int64) (any, *Event, error) {
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	kept := sess.cart[:0:0]
	for _, it := range sess.cart {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	sess.cart = kept
	return cart.Summarize(sess.cart), nil, nil
}

func (s *Store) updateQuantity(sess *Session, productID int64, qty int) (any, *Event, error) {
	if qty <= 0 {
		return s.removeFromCart(sess, productID)
	}
	if err := needSession(sess); err != nil {
		return nil, nil, err
	}
	for i := range sess.cart {
		if sess.cart[i].Product.ID == productID {
			sess.cart[i].Quantity = qty
			break
		}
	}
	return cart.Summarize(sess.cart), nil, nil
}

// AddToCart 加入购物车，已存在时累加数量
func (s *Store) AddToCart(ctx context.Context, sid string, productID int64, qty int) (cart.Summary, error) {
	return s.cartCommand(ctx, sid, AddToCart{ProductID: productID, Quantity: qty})
}

// RemoveFromCart 移除条目，不存在时无操作
func (s *Store) RemoveFromCart(ctx context.Context, sid string, productID int64) (cart.Summary, error) {
	return s.cartCommand(ctx, sid, RemoveFromCart{ProductID: productID})
}

// UpdateQuantity 设置数量（绝对值），<=0 等同移除
func (s *Store) UpdateQuantity(ctx context.Context, sid string, productID int64, qty int) (cart.Summary, error) {
	return s.cartCommand(ctx, sid, UpdateQuantity{ProductID: productID, Quantity: qty})
}

func (s *Store) cartCommand(ctx context.Context, sid string, cmd Command) (cart.Summary, error) {
	res, err := s.Apply(ctx, sid, cmd)
	if err != nil {
		return cart.Summary{}, err
	}
	return res.(cart.Summary), nil
}
