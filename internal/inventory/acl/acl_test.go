package acl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
	"github.com/dmehra2102/commerce-choreography/pkg/logging"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, evt envelope.Event) error {
	return m.Called(ctx, evt).Error(0)
}

func TestProductCreatedTranslator(t *testing.T) {
	cases := []struct {
		name string
		data string
		want bool
	}{
		{"valid", `{"productId":"p-1","name":"Widget","price":12.99}`, true},
		{"string data", `"{\"productId\":\"p-1\"}"`, true},
		{"empty id", `{"productId":"","name":"Widget"}`, false},
		{"missing id", `{"name":"Widget"}`, false},
		{"not an object", `[1,2]`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &mockPublisher{}
			pub.On("Publish", mock.Anything, domain.ProductAdded{ProductID: "p-1"}).Return(nil)

			body := `{"id":"1","type":"product.productCreated.v1","data":` + tc.data + `}`
			env, err := envelope.Parse([]byte(body))
			assert.NoError(t, err)

			got := NewProductCreatedTranslator(logging.Discard(), pub).Handle(context.Background(), env)
			assert.Equal(t, tc.want, got)
			if tc.want {
				pub.AssertExpectations(t)
			} else {
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProductCreatedTranslator_PublishFailure(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("down"))

	ok := NewProductCreatedTranslator(logging.Discard(), pub).Handle(context.Background(),
		envelope.Envelope{Type: EventProductCreated, Data: []byte(`{"productId":"p-1"}`)})
	assert.False(t, ok)
}
