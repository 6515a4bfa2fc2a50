package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/commerce-choreography/internal/product/application"
	"github.com/dmehra2102/commerce-choreography/internal/product/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
	"github.com/dmehra2102/commerce-choreography/pkg/logging"
)

func TestCreateProduct(t *testing.T) {
	repo, pub := newMemRepo(), &recordingPublisher{}
	svc := application.NewService(logging.Discard(), repo, pub)

	p, err := svc.CreateProduct(context.Background(), "Widget", decimal.RequireFromString("12.99"))
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.ProductCreated{ProductID: p.ID, Name: "Widget", Price: 12.99}, pub.events[0])

	_, err = svc.CreateProduct(context.Background(), "ab", decimal.NewFromInt(1))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Len(t, pub.events, 1)
}

func TestCreateProduct_PublishFailureAfterWrite(t *testing.T) {
	repo := newMemRepo()
	svc := application.NewService(logging.Discard(), repo, &recordingPublisher{err: apperror.Publish(errors.New("down"))})

	p, err := svc.CreateProduct(context.Background(), "Widget", decimal.NewFromInt(3))
	assert.True(t, apperror.Is(err, apperror.KindPublish))
	_, getErr := repo.Get(context.Background(), p.ID)
	assert.NoError(t, getErr, "state write is not rolled back")
}

func TestUpdateProduct_NoChangePublishesNothing(t *testing.T) {
	repo, pub := newMemRepo(), &recordingPublisher{}
	svc := application.NewService(logging.Discard(), repo, pub)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, "Widget", decimal.NewFromInt(10))
	require.NoError(t, err)

	got, err := svc.UpdateProduct(ctx, p.ID, "Widget", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.False(t, got.Updated)
	assert.Len(t, pub.events, 1)
	assert.Equal(t, 1, repo.writes)

	_, err = svc.UpdateProduct(ctx, p.ID, "Widget", decimal.NewFromInt(20))
	require.NoError(t, err)
	require.Len(t, pub.events, 2)
	assert.Equal(t, domain.ProductUpdated{
		ProductID: p.ID,
		Previous:  domain.Details{Name: "Widget", Price: 10},
		New:       domain.Details{Name: "Widget", Price: 20},
	}, pub.events[1])
}

func TestUpdateAndDelete_UnknownProduct(t *testing.T) {
	svc := application.NewService(logging.Discard(), newMemRepo(), &recordingPublisher{})

	_, err := svc.UpdateProduct(context.Background(), "nope", "Widget", decimal.NewFromInt(1))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.True(t, apperror.Is(svc.DeleteProduct(context.Background(), "nope"), apperror.KindNotFound))
}

func TestDeleteProduct(t *testing.T) {
	repo, pub := newMemRepo(), &recordingPublisher{}
	svc := application.NewService(logging.Discard(), repo, pub)
	p, _ := svc.CreateProduct(context.Background(), "Widget", decimal.NewFromInt(1))

	require.NoError(t, svc.DeleteProduct(context.Background(), p.ID))
	assert.Equal(t, domain.ProductDeleted{ProductID: p.ID}, pub.events[1])
}

func TestHandleStockUpdated(t *testing.T) {
	repo := newMemRepo()
	svc := application.NewService(logging.Discard(), repo, &recordingPublisher{})
	p, _ := svc.CreateProduct(context.Background(), "Widget", decimal.NewFromInt(1))

	data, _ := json.Marshal(domain.StockUpdated{ProductID: p.ID, StockLevel: 4})
	require.NoError(t, svc.HandleStockUpdated(context.Background(), envelope.Envelope{Type: domain.EventStockUpdated, Data: data}))

	got, _ := repo.Get(context.Background(), p.ID)
	assert.Equal(t, 4, got.StockLevel)

	data, _ = json.Marshal(domain.StockUpdated{ProductID: "deleted", StockLevel: 4})
	assert.NoError(t, svc.HandleStockUpdated(context.Background(), envelope.Envelope{Data: data}))
}

func TestPublicTranslator(t *testing.T) {
	pub := &recordingPublisher{}
	tr := application.NewPublicTranslator(logging.Discard(), pub)

	data, _ := json.Marshal(domain.ProductUpdated{ProductID: "p", Previous: domain.Details{Name: "a", Price: 1}, New: domain.Details{Name: "b", Price: 2}})
	require.NoError(t, tr.Handle(context.Background(), envelope.Envelope{Type: domain.EventProductUpdated, Data: data}))
	assert.Equal(t, application.PublicProductUpdated{
		ProductID: "p",
		Previous:  application.PublicDetails{Name: "a", Price: 1},
		New:       application.PublicDetails{Name: "b", Price: 2},
	}, pub.events[0])

	require.NoError(t, tr.Handle(context.Background(), envelope.Envelope{Type: domain.EventStockUpdated, Data: []byte(`{}`)}))
	assert.Len(t, pub.events, 1, "internal-only events stay internal")
}
