package order

import (
	"context"
	"io"
	"log"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
	"storefront-api/internal/service/webhook"

	"github.com/google/uuid"
)

type orderRepo interface {
	MaterializeFromCart(ctx context.Context, in orderrepo.MaterializeInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type Service struct {
	repo   orderRepo
	logger *log.Logger
}

func New(repo orderrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// Materialize converts a validated payment into a persisted order. The heavy
// lifting is one atomic transaction in the repository; this layer assigns the
// order number and adapts the webhook pipeline's input.
func (s *Service) Materialize(ctx context.Context, in webhook.MaterializeOrder) (*domain.Order, error) {
	order, err := s.repo.MaterializeFromCart(ctx, orderrepo.MaterializeInput{
		CartID:          in.CartID,
		OrderNumber:     newOrderNumber(),
		AmountCents:     in.AmountCents,
		Currency:        in.Currency,
		ProcessorTxnID:  in.ProcessorTxnID,
		PaymentStatus:   domain.PaymentStatusSucceeded,
		PaymentMetadata: in.PaymentMetadata,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order: created order_number=%s order_id=%s cart_id=%s", order.OrderNumber, order.ID, in.CartID)
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func newOrderNumber() string {
	return "ORD-" + uuid.NewString()[:8]
}
