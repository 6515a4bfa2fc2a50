package application

const (
	EventProductCreated    = "product.productCreated.v1"
	EventProductUpdated    = "product.productUpdated.v1"
	EventPricingCalculated = "pricing.pricingCalculated.v1"
)

type productCreated struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type productDetails struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type productUpdated struct {
	ProductID string         `json:"productId"`
	Previous  productDetails `json:"previous"`
	New       productDetails `json:"new"`
}

type BracketPayload struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type PricingCalculated struct {
	ProductID     string           `json:"productId"`
	PriceBrackets []BracketPayload `json:"priceBrackets"`
}

func (e PricingCalculated) EventType() string      { return EventPricingCalculated }
func (e PricingCalculated) ConversationID() string { return e.ProductID }
