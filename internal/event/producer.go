package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/whitepeony/storefront/internal/domain"
	pkgkafka "github.com/whitepeony/storefront/pkg/kafka"
)

// Kafka topics for storefront domain events.
const (
	TopicCartSynced      = "storefront.cart.synced"
	TopicWishlistChanged = "storefront.wishlist.changed"
	TopicOrderPlaced     = "storefront.order.placed"
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront-service"

// CartSyncedData is the payload for a cart.synced event, emitted whenever a
// fresh snapshot is reconciled.
type CartSyncedData struct {
	UserID             string `json:"user_id"`
	CartID             string `json:"cart_id,omitempty"`
	ItemCount          int    `json:"item_count"`
	SubtotalOriginal   int64  `json:"subtotal_original"`
	SubtotalDiscounted int64  `json:"subtotal_discounted"`
	TotalSavings       int64  `json:"total_savings"`
}

// WishlistChangedData is the payload for a wishlist.changed event.
type WishlistChangedData struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id,omitempty"`
	Action    string `json:"action"`
	Size      int    `json:"size"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	UserID     string `json:"user_id"`
	OrderID    string `json:"order_id"`
	GrandTotal int64  `json:"grand_total"`
	Status     string `json:"status"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the storefront service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartSynced publishes a cart.synced event for a fresh snapshot.
func (p *Producer) PublishCartSynced(ctx context.Context, snapshot *domain.CartSnapshot) error {
	data := CartSyncedData{
		UserID:             snapshot.UserID,
		CartID:             snapshot.CartID,
		ItemCount:          snapshot.ItemCount(),
		SubtotalOriginal:   snapshot.SubtotalOriginal,
		SubtotalDiscounted: snapshot.SubtotalDiscounted,
		TotalSavings:       snapshot.TotalSavings,
	}

	event, err := pkgkafka.NewEvent(TopicCartSynced, snapshot.UserID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.synced event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartSynced, event); err != nil {
		return fmt.Errorf("publish cart.synced event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.synced event",
		slog.String("user_id", snapshot.UserID),
		slog.Int("item_count", snapshot.ItemCount()),
	)

	return nil
}

// PublishWishlistChanged publishes a wishlist.changed event. Action is one
// of "added", "removed", or "refreshed".
func (p *Producer) PublishWishlistChanged(ctx context.Context, wishlist *domain.Wishlist, productID, action string) error {
	data := WishlistChangedData{
		UserID:    wishlist.UserID,
		ProductID: productID,
		Action:    action,
		Size:      wishlist.Len(),
	}

	event, err := pkgkafka.NewEvent(TopicWishlistChanged, wishlist.UserID, AggregateTypeWishlist, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create wishlist.changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistChanged, event); err != nil {
		return fmt.Errorf("publish wishlist.changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.changed event",
		slog.String("user_id", wishlist.UserID),
		slog.String("action", action),
	)

	return nil
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, userID string, result *domain.OrderResult) error {
	data := OrderPlacedData{
		UserID:     userID,
		OrderID:    result.OrderID,
		GrandTotal: result.GrandTotal,
		Status:     result.Status,
	}

	event, err := pkgkafka.NewEvent(TopicOrderPlaced, result.OrderID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPlaced, event); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("user_id", userID),
		slog.String("order_id", result.OrderID),
	)

	return nil
}
