package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// TopicCart carries every cart line event, keyed by line id.
const TopicCart = "storefront.cart"

// Event types published on TopicCart.
const (
	TypeCartItemAdded   = "cart.item_added"
	TypeCartItemUpdated = "cart.item_updated"
	TypeCartItemRemoved = "cart.item_removed"
)

// SourceStorefront identifies this service in the event envelope.
const SourceStorefront = "storefront"

// CartItemData is the payload of added and updated events.
type CartItemData struct {
	ItemID    string `json:"itemId"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartItemRemovedData is the payload of removed events.
type CartItemRemovedData struct {
	ItemID string `json:"itemId"`
}

// publisher is satisfied by *pkgkafka.Producer.
type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates an event producer on top of a Kafka producer.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) PublishItemAdded(ctx context.Context, item domain.CartItem) error {
	return p.publish(ctx, TypeCartItemAdded, item.ID, itemData(item))
}

func (p *Producer) PublishItemUpdated(ctx context.Context, item domain.CartItem) error {
	return p.publish(ctx, TypeCartItemUpdated, item.ID, itemData(item))
}

func (p *Producer) PublishItemRemoved(ctx context.Context, itemID string) error {
	return p.publish(ctx, TypeCartItemRemoved, itemID, CartItemRemovedData{ItemID: itemID})
}

func (p *Producer) publish(ctx context.Context, eventType, itemID string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, itemID, SourceStorefront, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)))
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if err := p.kafka.Publish(ctx, TopicCart, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published cart event",
		slog.String("event_type", eventType),
		slog.String("item_id", itemID),
	)
	return nil
}

func itemData(item domain.CartItem) CartItemData {
	return CartItemData{
		ItemID:    item.ID,
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
	}
}

// Nop discards every event. It is used when EVENTS_ENABLED is false.
type Nop struct{}

func (Nop) PublishItemAdded(context.Context, domain.CartItem) error   { return nil }
func (Nop) PublishItemUpdated(context.Context, domain.CartItem) error { return nil }
func (Nop) PublishItemRemoved(context.Context, string) error          { return nil }
