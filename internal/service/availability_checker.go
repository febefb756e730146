package service

import (
	"context"
	"encoding/json"
	"errors"

	"coffee-catalog/internal/domain"
	"coffee-catalog/internal/repository"

	"go.uber.org/zap"
)

// ResponsePublisher publishes a reservation response to a queue. Satisfied by
// broker.Client; tests substitute a fake.
type ResponsePublisher interface {
	Publish(ctx context.Context, queue string, payload interface{}) error
}

// AvailabilityChecker is the consumer side of the stock-reservation protocol.
// For each request it reserves stock per line item and publishes an aggregate
// response listing the satisfied items.
//
// Reservations commit per item with no compensation: when a later item fails
// unexpectedly, decrements already applied stay in effect and no response is
// published for the request. The ordering system observes either a response
// or a timeout.
type AvailabilityChecker struct {
	products      repository.ProductRepository
	publisher     ResponsePublisher
	responseQueue string
	logger        *zap.Logger
}

// NewAvailabilityChecker creates an AvailabilityChecker that publishes
// responses to responseQueue. Wiring the checker to a broker subscription is
// the caller's responsibility.
func NewAvailabilityChecker(
	products repository.ProductRepository,
	publisher ResponsePublisher,
	responseQueue string,
	logger *zap.Logger,
) *AvailabilityChecker {
	return &AvailabilityChecker{
		products:      products,
		publisher:     publisher,
		responseQueue: responseQueue,
		logger:        logger,
	}
}

// HandleMessage processes one raw availability-check message. A body that
// fails to decode is logged and dropped without a response; the subscription
// acknowledges it either way.
func (c *AvailabilityChecker) HandleMessage(ctx context.Context, body []byte) error {
	var req domain.ReservationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.logger.Error("Failed to decode reservation request, dropping message",
			zap.Error(err),
		)
		return nil
	}

	response, err := c.CheckAvailability(ctx, &req)
	if err != nil {
		c.logger.Error("Failed to process reservation request",
			zap.Error(err),
			zap.Int64("order_id", req.OrderID),
		)
		return err
	}

	if err := c.publisher.Publish(ctx, c.responseQueue, response); err != nil {
		c.logger.Error("Failed to publish reservation response",
			zap.Error(err),
			zap.Int64("order_id", req.OrderID),
		)
		return err
	}

	c.logger.Info("Reservation request processed",
		zap.Int64("order_id", req.OrderID),
		zap.Int("requested_items", len(req.Items)),
		zap.Int("satisfied_items", len(response.Items)),
		zap.Bool("creation_possible", response.CreationPossible),
	)
	return nil
}

// CheckAvailability evaluates every line item in request order and reserves
// stock for each one it can satisfy. Items referencing unknown products or
// packages, and items the current stock cannot cover, are excluded from the
// response without a per-item failure reason. CreationPossible reports
// whether at least one item was satisfied; partial satisfaction still counts.
func (c *AvailabilityChecker) CheckAvailability(ctx context.Context, req *domain.ReservationRequest) (*domain.ReservationResponse, error) {
	satisfied := []domain.ReservationItem{}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			continue
		}

		product, err := c.products.FindByID(ctx, item.ProductID, true)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return nil, err
		}

		switch product.SaleType {
		case domain.SaleTypeUnit:
			reserved, err := c.products.DecrementStock(ctx, product.ID, item.Quantity)
			if err != nil {
				return nil, err
			}
			if !reserved {
				continue
			}
			item.PricePerUnit = &product.PricePerKg
			satisfied = append(satisfied, item)

		case domain.SaleTypePackaged:
			pkg := product.FindPackage(item.ProductPackageID)
			if pkg == nil {
				continue
			}
			totalWeight := item.Quantity * pkg.Weight
			reserved, err := c.products.DecrementStock(ctx, product.ID, totalWeight)
			if err != nil {
				return nil, err
			}
			if !reserved {
				continue
			}
			item.PackageWeight = &pkg.Weight
			item.Price = &pkg.Price
			satisfied = append(satisfied, item)
		}
	}

	return &domain.ReservationResponse{
		OrderID:          req.OrderID,
		Items:            satisfied,
		CreationPossible: len(satisfied) > 0,
	}, nil
}
