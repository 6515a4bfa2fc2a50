package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/commerce-choreography/internal/order/application"
	"github.com/dmehra2102/commerce-choreography/internal/order/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
	"github.com/dmehra2102/commerce-choreography/pkg/logging"
)

type memRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newMemRepo() *memRepo { return &memRepo{orders: map[string]domain.Order{}} }

func (r *memRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *memRepo) Update(ctx context.Context, o *domain.Order) error { return r.Create(ctx, o) }

func (r *memRepo) Get(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, &domain.NotFoundError{OrderID: id}
	}
	return &o, nil
}

type recordingPublisher struct {
	events []envelope.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt envelope.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func newService() (*application.Service, *memRepo, *recordingPublisher) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	return application.NewService(logging.Discard(), repo, pub), repo, pub
}

func TestCreateOrder(t *testing.T) {
	svc, repo, pub := newService()
	total := decimal.RequireFromString("25.98")

	o, err := svc.CreateOrder(context.Background(), application.CreateOrderCmd{
		UserID: "u-1", Products: []string{"p-1", "p-1"}, TotalPrice: &total,
	})
	require.NoError(t, err)

	stored, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCreated, stored.Status)
	assert.True(t, stored.TotalPrice.Equal(total))

	require.Len(t, pub.events, 1)
	evt := pub.events[0].(domain.OrderCreated)
	assert.Equal(t, o.ID, evt.OrderID)
	assert.Equal(t, []string{"p-1", "p-1"}, evt.Products)
	assert.Equal(t, "Standard", evt.Type)
}

func TestCreateOrder_Invalid(t *testing.T) {
	svc, _, pub := newService()

	_, err := svc.CreateOrder(context.Background(), application.CreateOrderCmd{UserID: "u-1"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	neg := decimal.NewFromInt(-1)
	_, err = svc.CreateOrder(context.Background(), application.CreateOrderCmd{UserID: "u-1", Products: []string{}, TotalPrice: &neg})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, pub.events)
}

func TestCreateOrder_PublishFailureKeepsOrder(t *testing.T) {
	svc, repo, pub := newService()
	pub.err = apperror.Publish(errors.New("broker down"))

	o, err := svc.CreateOrder(context.Background(), application.CreateOrderCmd{UserID: "u-1", Products: []string{"p"}, Priority: true})
	require.Error(t, err)
	require.NotNil(t, o)
	stored, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TypePriority, stored.Type)
}

func TestConfirmThenComplete(t *testing.T) {
	svc, repo, pub := newService()
	ctx := context.Background()
	o, err := svc.CreateOrder(ctx, application.CreateOrderCmd{UserID: "u-1", Products: []string{"p"}})
	require.NoError(t, err)

	_, err = svc.CompleteOrder(ctx, o.ID)
	var notConfirmed *domain.OrderNotConfirmedError
	require.ErrorAs(t, err, &notConfirmed)

	require.NoError(t, svc.ConfirmOrder(ctx, o.ID))
	require.NoError(t, svc.ConfirmOrder(ctx, o.ID), "redelivered confirmation")

	completed, err := svc.CompleteOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)

	require.NoError(t, svc.MarkNoStock(ctx, o.ID))
	stored, _ := repo.Get(ctx, o.ID)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	types := make([]string, 0, len(pub.events))
	for _, e := range pub.events {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{domain.EventOrderCreated, domain.EventOrderConfirmed, domain.EventOrderCompleted}, types)
}

func TestMarkNoStock(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	o, err := svc.CreateOrder(ctx, application.CreateOrderCmd{UserID: "u-1", Products: []string{"p"}})
	require.NoError(t, err)

	require.NoError(t, svc.MarkNoStock(ctx, o.ID))
	require.NoError(t, svc.MarkNoStock(ctx, o.ID))
	stored, _ := repo.Get(ctx, o.ID)
	assert.Equal(t, domain.StatusNoStock, stored.Status)

	require.NoError(t, svc.ConfirmOrder(ctx, o.ID))
	stored, _ = repo.Get(ctx, o.ID)
	assert.Equal(t, domain.StatusNoStock, stored.Status)
}

func TestUnknownOrderOutcomesAreAcknowledged(t *testing.T) {
	svc, _, _ := newService()
	assert.NoError(t, svc.ConfirmOrder(context.Background(), "missing"))
	assert.NoError(t, svc.MarkNoStock(context.Background(), "missing"))

	_, err := svc.GetOrder(context.Background(), "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
