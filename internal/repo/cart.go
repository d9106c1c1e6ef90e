package repo

import (
	"context"

	"github.com/Skotchmaster/ecommerce/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

// ListCartItemsForUser returns the user's cart rows joined with the current
// product name and price. Rows whose product no longer exists are skipped.
func (r *GormRepo) ListCartItemsForUser(ctx context.Context, userID uint) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	if err := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Select("cart_items.id, cart_items.user_id, cart_items.product_id, products.name AS product_name, products.price AS product_price").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id ASC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

func (r *GormRepo) CountCartItems(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteOneFromCart removes a single row for (user, product), the oldest one
// when several exist.
func (r *GormRepo) DeleteOneFromCart(ctx context.Context, productID, userID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Where("product_id = ? AND user_id = ?", productID, userID).Order("id ASC").First(&item).Error; err != nil {
			return err
		}
		res := tx.Delete(&item)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) DeleteAllFromCart(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
