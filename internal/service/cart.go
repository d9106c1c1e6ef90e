package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce/internal/models"
	"github.com/Skotchmaster/ecommerce/internal/mykafka"
	"github.com/Skotchmaster/ecommerce/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

func (s *CartService) GetCart(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return s.Repo.ListCartItemsForUser(ctx, userID)
}

// AddToCart stores one more row for (user, product). Both must exist.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	if _, err := s.Repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d not found: %w", userID, ErrValidation)
		}
		return nil, err
	}

	exists, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("product %d not found: %w", productID, ErrValidation)
	}

	item := &models.CartItem{UserID: userID, ProductID: productID}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicCartEvents, userID, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
	})
	return item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) error {
	if err := s.Repo.DeleteOneFromCart(ctx, productID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d is not in the cart: %w", productID, ErrValidation)
		}
		return err
	}

	publish(ctx, s.Events, mykafka.TopicCartEvents, userID, map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})
	return nil
}

// Checkout empties the cart. No order is recorded; the event carries the
// lines that were in the cart. An empty cart checks out without an event.
func (s *CartService) Checkout(ctx context.Context, userID uint) (int64, error) {
	count, err := s.Repo.CountCartItems(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	lines, err := s.Repo.ListCartItemsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	removed, err := s.Repo.DeleteAllFromCart(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, line := range lines {
		total += line.ProductPrice
	}
	publish(ctx, s.Events, mykafka.TopicCartEvents, userID, map[string]any{
		"type":   "cart_checked_out",
		"userID": userID,
		"items":  lines,
		"total":  total,
	})
	return removed, nil
}
