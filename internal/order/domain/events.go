package domain

const (
	EventOrderCreated   = "order.orderCreated.v1"
	EventOrderConfirmed = "order.orderConfirmed.v1"
	EventOrderCompleted = "order.orderCompleted.v1"
)

type OrderCreated struct {
	OrderID  string   `json:"orderId"`
	UserID   string   `json:"userId"`
	Products []string `json:"products"`
	Type     string   `json:"orderType"`
}

func (e OrderCreated) EventType() string      { return EventOrderCreated }
func (e OrderCreated) ConversationID() string { return e.OrderID }

type OrderConfirmed struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

func (e OrderConfirmed) EventType() string      { return EventOrderConfirmed }
func (e OrderConfirmed) ConversationID() string { return e.OrderID }

type OrderCompleted struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

func (e OrderCompleted) EventType() string      { return EventOrderCompleted }
func (e OrderCompleted) ConversationID() string { return e.OrderID }
