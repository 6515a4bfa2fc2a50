package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/commerce-choreography/internal/product/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

// Public contracts. They mirror today's internal events but are declared
// separately so the internal shapes can change without breaking consumers.
type PublicProductCreated struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

func (e PublicProductCreated) EventType() string      { return domain.EventProductCreated }
func (e PublicProductCreated) ConversationID() string { return e.ProductID }

type PublicDetails struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type PublicProductUpdated struct {
	ProductID string        `json:"productId"`
	Previous  PublicDetails `json:"previous"`
	New       PublicDetails `json:"new"`
}

func (e PublicProductUpdated) EventType() string      { return domain.EventProductUpdated }
func (e PublicProductUpdated) ConversationID() string { return e.ProductID }

type PublicProductDeleted struct {
	ProductID string `json:"productId"`
}

func (e PublicProductDeleted) EventType() string      { return domain.EventProductDeleted }
func (e PublicProductDeleted) ConversationID() string { return e.ProductID }

// PublicTranslator republishes internal product events on the public topic.
type PublicTranslator struct {
	log       *slog.Logger
	publisher envelope.Publisher
}

func NewPublicTranslator(log *slog.Logger, publisher envelope.Publisher) *PublicTranslator {
	return &PublicTranslator{log: log, publisher: publisher}
}

func (t *PublicTranslator) Handle(ctx context.Context, env envelope.Envelope) error {
	var out envelope.Event
	switch env.Type {
	case domain.EventProductCreated:
		var in domain.ProductCreated
		if err := env.Decode(&in); err != nil {
			return apperror.Deserialization(err)
		}
		out = PublicProductCreated{ProductID: in.ProductID, Name: in.Name, Price: in.Price}
	case domain.EventProductUpdated:
		var in domain.ProductUpdated
		if err := env.Decode(&in); err != nil {
			return apperror.Deserialization(err)
		}
		out = PublicProductUpdated{
			ProductID: in.ProductID,
			Previous:  PublicDetails(in.Previous),
			New:       PublicDetails(in.New),
		}
	case domain.EventProductDeleted:
		var in domain.ProductDeleted
		if err := env.Decode(&in); err != nil {
			return apperror.Deserialization(err)
		}
		out = PublicProductDeleted(in)
	default:
		t.log.Warn("no public mapping for event", "type", env.Type)
		return nil
	}
	return t.publisher.Publish(ctx, out)
}
