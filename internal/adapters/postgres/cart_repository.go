package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/domain/models"
	"github.com/vendoria/commerce-service/internal/domain/ports"
)

// CartRepository implements ports.CartRepository on PostgreSQL
type CartRepository struct {
	pool ports.DBTX
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db ports.DBPort) *CartRepository {
	return &CartRepository{pool: db.GetDB()}
}

// GetOrCreateByUser returns the user's cart with items, creating an empty cart
// on first use.
func (r *CartRepository) GetOrCreateByUser(ctx context.Context, tx ports.DBTX, userID uuid.UUID) (*models.Cart, error) {
	q := executorOr(tx, r.pool)

	var cart models.Cart
	err := q.QueryRow(ctx, `
		INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, user_id, created_at, updated_at`,
		uuid.New(), userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, cart_id, product_id, quantity, price, created_at
		FROM cart_items WHERE cart_id = $1 ORDER BY created_at`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		var price pgtype.Numeric
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &price, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		if item.Price, err = pgNumericToDecimal(price); err != nil {
			return nil, fmt.Errorf("parse cart item price: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return &cart, nil
}

// AddItem inserts a cart line, merging quantity on duplicate product
func (r *CartRepository) AddItem(ctx context.Context, tx ports.DBTX, item *models.CartItem) error {
	q := executorOr(tx, r.pool)

	price, err := decimalToNumeric(item.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		item.ID, item.CartID, item.ProductID, item.Quantity, price,
	)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// UpdateItemQuantity sets a line's quantity
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, tx ports.DBTX, itemID uuid.UUID, quantity int32) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// RemoveItem deletes a cart line
func (r *CartRepository) RemoveItem(ctx context.Context, tx ports.DBTX, itemID uuid.UUID) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// Clear removes all lines from a cart
func (r *CartRepository) Clear(ctx context.Context, tx ports.DBTX, cartID uuid.UUID) error {
	q := executorOr(tx, r.pool)

	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// AddWishlistItem saves a product to a user's wishlist; duplicates are ignored
func (r *CartRepository) AddWishlistItem(ctx context.Context, tx ports.DBTX, item *models.WishlistItem) error {
	q := executorOr(tx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING`,
		item.ID, item.UserID, item.ProductID,
	)
	if err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

// RemoveWishlistItem removes a product from a user's wishlist
func (r *CartRepository) RemoveWishlistItem(ctx context.Context, tx ports.DBTX, userID, productID uuid.UUID) error {
	q := executorOr(tx, r.pool)

	tag, err := q.Exec(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// ListWishlist lists a user's wishlist, newest first
func (r *CartRepository) ListWishlist(ctx context.Context, db ports.DBTX, userID uuid.UUID) ([]*models.WishlistItem, error) {
	q := executorOr(db, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM wishlist_items WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	var items []*models.WishlistItem
	for rows.Next() {
		var item models.WishlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist: %w", err)
	}
	return items, nil
}
