package domain

const (
	EventProductCreated = "product.productCreated.v1"
	EventProductUpdated = "product.productUpdated.v1"
	EventProductDeleted = "product.productDeleted.v1"
	EventPricingChanged = "product.pricingChanged.v1"
	EventStockUpdated   = "product.stockUpdated.v1"
)

type ProductCreated struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

func (e ProductCreated) EventType() string      { return EventProductCreated }
func (e ProductCreated) ConversationID() string { return e.ProductID }

type Details struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ProductUpdated struct {
	ProductID string  `json:"productId"`
	Previous  Details `json:"previous"`
	New       Details `json:"new"`
}

func (e ProductUpdated) EventType() string      { return EventProductUpdated }
func (e ProductUpdated) ConversationID() string { return e.ProductID }

type ProductDeleted struct {
	ProductID string `json:"productId"`
}

func (e ProductDeleted) EventType() string      { return EventProductDeleted }
func (e ProductDeleted) ConversationID() string { return e.ProductID }

type BracketPayload struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// PricingChanged and StockUpdated are produced by the product ACL from
// other services' public events.
type PricingChanged struct {
	ProductID     string           `json:"productId"`
	PriceBrackets []BracketPayload `json:"priceBrackets"`
}

func (e PricingChanged) EventType() string      { return EventPricingChanged }
func (e PricingChanged) ConversationID() string { return e.ProductID }

type StockUpdated struct {
	ProductID  string `json:"productId"`
	StockLevel int    `json:"stockLevel"`
}

func (e StockUpdated) EventType() string      { return EventStockUpdated }
func (e StockUpdated) ConversationID() string { return e.ProductID }

func NewProductCreated(p *Product) ProductCreated {
	return ProductCreated{ProductID: p.ID, Name: p.Name, Price: p.Price.InexactFloat64()}
}

func NewProductUpdated(p *Product) ProductUpdated {
	return ProductUpdated{
		ProductID: p.ID,
		Previous:  Details{Name: p.PreviousName, Price: p.PreviousPrice.InexactFloat64()},
		New:       Details{Name: p.Name, Price: p.Price.InexactFloat64()},
	}
}
