package cart

import (
	"context"
	"errors"
	"strings"

	"storefront-api/internal/domain"
)

type Service struct {
	repo        cartRepo
	variantRepo variantRepo
}

type cartRepo interface {
	Create(ctx context.Context, userID string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertItem(ctx context.Context, cartID, variantID string, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, variantID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, variantID string) error
}

type variantRepo interface {
	GetBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error)
}

func New(repo cartRepo, variantRepo variantRepo) *Service {
	return &Service{repo: repo, variantRepo: variantRepo}
}

type AddItemInput struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Get returns the user's active cart, or an empty unsaved cart when none
// exists yet; carts are only created on first add.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.Cart{UserID: userID, Status: domain.CartStatusActive}, nil
		}
		return nil, err
	}
	return cart, nil
}

// AddItem lazily creates the active cart and upserts the (cart, variant)
// pair: re-adding an existing variant increments quantity.
func (s *Service) AddItem(ctx context.Context, userID string, in AddItemInput) (*domain.Cart, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, errors.New("sku required")
	}
	if in.Quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	variant, err := s.variantRepo.GetBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, err
	}

	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		cart, err = s.repo.Create(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	requested := in.Quantity
	for _, item := range cart.Items {
		if item.VariantID == variant.ID {
			requested += item.Quantity
		}
	}
	if requested > variant.Stock {
		return nil, &domain.InsufficientStockError{
			SKU:       variant.SKU,
			Requested: requested,
			Available: variant.Stock,
		}
	}

	if err := s.repo.UpsertItem(ctx, cart.ID, variant.ID, in.Quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

func (s *Service) UpdateItem(ctx context.Context, userID, variantID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetItemQuantity(ctx, cart.ID, variantID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, variantID string) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, variantID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}
