package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/asati/internal/datamodels/cart"
	"github.com/example/asati/internal/datamodels/order"
	"github.com/example/asati/internal/datamodels/product"
	"github.com/example/asati/internal/store"
)

type fakeOrderRepo struct {
	records map[string]*order.Record
	err     error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{records: make(map[string]*order.Record)}
}

func (r *fakeOrderRepo) Insert(ctx context.Context, rec *order.Record) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.records[rec.ID]; !ok {
		r.records[rec.ID] = rec
	}
	return nil
}

func (r *fakeOrderRepo) Upsert(ctx context.Context, rec *order.Record) error {
	if r.err != nil {
		return r.err
	}
	if cur, ok := r.records[rec.ID]; ok {
		cur.Status = rec.Status
		cur.UpdatedAt = rec.UpdatedAt
		return nil
	}
	r.records[rec.ID] = rec
	return nil
}

func sampleEvent(t store.EventType, status order.Status) store.Event {
	scarf := product.Product{ID: 1, Name: "Scarf", Price: decimal.NewFromInt(10)}
	return store.Event{
		Type: t,
		Order: order.Order{
			ID:       "order-1700000000000",
			UserID:   "user-abc123def",
			UserName: "Meera",
			Items:    []cart.Item{{Product: scarf, Quantity: 2}},
			Total:    decimal.RequireFromString("22"),
			PlacedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Status:   status,
		},
		At: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}
}

func encode(t *testing.T, ev store.Event) []byte {
	body, err := EncodeOrderEvent(ev)
	require.NoError(t, err)
	return body
}

func TestOrderServiceArchivesPlacedThenDecided(t *testing.T) {
	GetMonitor().Reset()
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, encode(t, sampleEvent(store.EventOrderPlaced, order.StatusPending))))
	rec := repo.records["order-1700000000000"]
	require.NotNil(t, rec)
	assert.Equal(t, order.StatusPending, rec.Status)
	assert.True(t, decimal.RequireFromString("22").Equal(rec.Total))
	require.Len(t, rec.Items, 1)
	assert.Equal(t, "Scarf", rec.Items[0].Product.Name)

	require.NoError(t, svc.Handle(ctx, encode(t, sampleEvent(store.EventOrderStatusChanged, order.StatusApproved))))
	assert.Equal(t, order.StatusApproved, repo.records["order-1700000000000"].Status)
	assert.EqualValues(t, 2, GetMonitor().EventsArchived)
}

func TestOrderServiceLatePlacedDoesNotResetStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, encode(t, sampleEvent(store.EventOrderStatusChanged, order.StatusDeclined))))
	require.NoError(t, svc.Handle(ctx, encode(t, sampleEvent(store.EventOrderPlaced, order.StatusPending))))
	assert.Equal(t, order.StatusDeclined, repo.records["order-1700000000000"].Status)
}

func TestOrderServiceMalformed(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo(), nil)
	ctx := context.Background()

	for name, body := range map[string][]byte{
		"not json":     []byte("{oops"),
		"missing id":   []byte(`{"type":"order.placed","order":{}}`),
		"unknown type": []byte(`{"type":"order.shipped","order":{"id":"order-1"}}`),
	} {
		err := svc.Handle(ctx, body)
		assert.ErrorIs(t, err, ErrMalformedEvent, name)
		ack, requeue := Disposition(err)
		assert.False(t, ack, name)
		assert.False(t, requeue, name)
	}
}

func TestOrderServiceDBFailureRequeues(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.err = errors.New("deadlock")
	svc := NewOrderService(repo, nil)

	err := svc.Handle(context.Background(), encode(t, sampleEvent(store.EventOrderPlaced, order.StatusPending)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedEvent)

	ack, requeue := Disposition(err)
	assert.False(t, ack)
	assert.True(t, requeue)

	ack, requeue = Disposition(nil)
	assert.True(t, ack)
	assert.False(t, requeue)
}

func TestEncodeOrderEventTypes(t *testing.T) {
	assert.Equal(t, EventOrderPlaced, string(store.EventOrderPlaced))
	assert.Equal(t, EventOrderStatusChanged, string(store.EventOrderStatusChanged))

	body := encode(t, sampleEvent(store.EventOrderPlaced, order.StatusPending))
	assert.Contains(t, string(body), `"type":"order.placed"`)
	assert.Contains(t, string(body), `"occurred_at":"2026-01-02T03:04:06Z"`)
}
