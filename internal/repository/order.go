package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/snaytau/shop-api/internal/model"
)

type OrderRepository interface {
	// Create persists the order, its frozen items, and the per-item stock
	// decrements in one transaction. When any decrement fails the whole
	// checkout rolls back and no stock is touched.
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	Count(ctx context.Context) (int, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	DailyRevenue(ctx context.Context, since time.Time) ([]model.DailyRevenue, error)
}

type pgOrderRepo struct {
	pool        *pgxpool.Pool
	productRepo ProductRepository
}

func NewOrderRepository(pool *pgxpool.Pool, productRepo ProductRepository) OrderRepository {
	return &pgOrderRepo{pool: pool, productRepo: productRepo}
}

func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, name, address, city, postal_code, country, payment_method,
		                     total_price, shipping_fee, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.Name, order.Address, order.City, order.PostalCode,
		order.Country, order.PaymentMethod, order.TotalPrice, order.ShippingFee, order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, price, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			uuid.New(), order.ID, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		if err = r.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, address, city, postal_code, country, payment_method,
		        total_price, shipping_fee, status, created_at, updated_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.Name, &order.Address, &order.City, &order.PostalCode,
		&order.Country, &order.PaymentMethod, &order.TotalPrice, &order.ShippingFee,
		&order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.itemsFor(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *pgOrderRepo) itemsFor(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT oi.product_id, oi.quantity, oi.price, COALESCE(p.name, '')
		 FROM order_items oi
		 LEFT JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.created_at`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price, &item.ProductName); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT o.id, o.user_id, o.name, o.address, o.city, o.postal_code, o.country, o.payment_method,
		        o.total_price, o.shipping_fee, o.status, o.created_at, o.updated_at, '', ''
		 FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (r *pgOrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT o.id, o.user_id, o.name, o.address, o.city, o.postal_code, o.country, o.payment_method,
		        o.total_price, o.shipping_fee, o.status, o.created_at, o.updated_at,
		        COALESCE(u.name, ''), COALESCE(u.email, '')
		 FROM orders o LEFT JOIN users u ON u.id = o.user_id
		 ORDER BY o.created_at DESC`)
}

func (r *pgOrderRepo) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT o.id, o.user_id, o.name, o.address, o.city, o.postal_code, o.country, o.payment_method,
		        o.total_price, o.shipping_fee, o.status, o.created_at, o.updated_at,
		        COALESCE(u.name, ''), COALESCE(u.email, '')
		 FROM orders o LEFT JOIN users u ON u.id = o.user_id
		 ORDER BY o.created_at DESC LIMIT $1`, limit)
}

func (r *pgOrderRepo) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Name, &o.Address, &o.City, &o.PostalCode,
			&o.Country, &o.PaymentMethod, &o.TotalPrice, &o.ShippingFee, &o.Status,
			&o.CreatedAt, &o.UpdatedAt, &o.UserName, &o.UserEmail); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgOrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *pgOrderRepo) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_price), 0) FROM orders`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total revenue: %w", err)
	}
	return total, nil
}

func (r *pgOrderRepo) DailyRevenue(ctx context.Context, since time.Time) ([]model.DailyRevenue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT TO_CHAR(created_at, 'YYYY-MM-DD') AS day, SUM(total_price)
		 FROM orders WHERE created_at >= $1
		 GROUP BY day ORDER BY day`, since,
	)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	defer rows.Close()

	var points []model.DailyRevenue
	for rows.Next() {
		var p model.DailyRevenue
		if err := rows.Scan(&p.Date, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
