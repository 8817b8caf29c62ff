// Package order_repo provides the PostgreSQL implementation of the
// order repository. An order persists as a header row plus item and
// add-on line rows, written together inside the commit transaction.
package order_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/id"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/order"
	"lemonpos/internal/domain/pricing"
	"lemonpos/internal/infrastructure/storage/postgres"
)

const (
	ordersTable      = "doc_orders"
	orderItemsTable  = "doc_order_items"
	orderAddOnsTable = "doc_order_item_addons"
)

var orderColumns = []string{
	"id", "number", "timestamp", "total", "payment_method", "service_type",
	"service_fee", "customer_name", "customer_phone", "status",
	"amount_received", "change", "created_by",
}

var itemColumns = []string{
	"line_id", "order_id", "line_no", "product_id", "name", "category",
	"price", "base_price", "temperature", "quantity",
	"discount_type", "discount_percentage", "discount_amount",
	"subtotal", "total",
}

var addOnColumns = []string{
	"line_id", "item_line_id", "name", "price", "quantity",
}

// OrderRepo implements order.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// orderRow is the flat scan target for the header.
type orderRow struct {
	ID             id.ID                 `db:"id"`
	Number         string                `db:"number"`
	Timestamp      time.Time             `db:"timestamp"`
	Total          types.Money           `db:"total"`
	PaymentMethod  pricing.PaymentMethod `db:"payment_method"`
	ServiceType    order.ServiceType     `db:"service_type"`
	ServiceFee     types.Money           `db:"service_fee"`
	CustomerName   *string               `db:"customer_name"`
	CustomerPhone  *string               `db:"customer_phone"`
	Status         order.Status          `db:"status"`
	AmountReceived types.Money           `db:"amount_received"`
	Change         types.Money           `db:"change"`
	CreatedBy      *string               `db:"created_by"`
}

// itemRow is the flat scan target for one order line.
type itemRow struct {
	LineID             id.ID               `db:"line_id"`
	OrderID            id.ID               `db:"order_id"`
	LineNo             int                 `db:"line_no"`
	ProductID          id.ID               `db:"product_id"`
	Name               string              `db:"name"`
	Category           string              `db:"category"`
	Price              types.Money         `db:"price"`
	BasePrice          types.Money         `db:"base_price"`
	Temperature        pricing.Temperature `db:"temperature"`
	Quantity           int                 `db:"quantity"`
	DiscountType       *string             `db:"discount_type"`
	DiscountPercentage *decimal.Decimal    `db:"discount_percentage"`
	DiscountAmount     *types.Money        `db:"discount_amount"`
	Subtotal           types.Money         `db:"subtotal"`
	Total              types.Money         `db:"total"`
}

// addOnRow is the flat scan target for one add-on.
type addOnRow struct {
	LineID     id.ID       `db:"line_id"`
	ItemLineID id.ID       `db:"item_line_id"`
	Name       string      `db:"name"`
	Price      types.Money `db:"price"`
	Quantity   int         `db:"quantity"`
}

// Create persists the order with all item and add-on lines.
// Must be called inside the commit transaction; the COPY path
// requires it and partial writes must never survive.
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("order create requires transaction context")
	}

	q := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(
			o.ID, o.Number, o.Timestamp, o.Total, o.PaymentMethod, o.ServiceType,
			o.ServiceFee, nilIfEmpty(o.CustomerInfo.Name), nilIfEmpty(o.CustomerInfo.Phone), o.Status,
			o.AmountReceived, o.Change, o.CreatedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("order", "number", o.Number)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if len(o.Items) == 0 {
		return nil
	}

	itemRows := make([][]any, 0, len(o.Items))
	var addOnRows [][]any
	for lineNo, item := range o.Items {
		lineID := id.New()

		var discType *string
		var discPct *decimal.Decimal
		var discAmount *types.Money
		if item.Discount != nil {
			discType = &item.Discount.Type
			pct := item.Discount.Percentage
			discPct = &pct
			amount := item.Discount.Amount
			discAmount = &amount
		}

		itemRows = append(itemRows, []any{
			lineID, o.ID, lineNo + 1, item.ProductID, item.Name, item.Category,
			item.Price, item.BasePrice, item.Temperature, item.Quantity,
			discType, discPct, discAmount,
			item.Subtotal, item.Total,
		})

		for _, a := range item.AddOns {
			addOnRows = append(addOnRows, []any{
				id.New(), lineID, a.Name, a.Price, a.Quantity,
			})
		}
	}

	if _, err := r.inserter.CopyFromSlice(ctx, orderItemsTable, itemColumns, itemRows); err != nil {
		return fmt.Errorf("copy items: %w", err)
	}

	if len(addOnRows) > 0 {
		if _, err := r.inserter.CopyFromSlice(ctx, orderAddOnsTable, addOnColumns, addOnRows); err != nil {
			return fmt.Errorf("copy add-ons: %w", err)
		}
	}

	return nil
}

// GetByID retrieves one order with all lines.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row orderRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	itemsByOrder, err := r.loadItems(ctx, []id.ID{orderID})
	if err != nil {
		return nil, err
	}

	o := row.toOrder(itemsByOrder[orderID])
	return &o, nil
}

// List returns orders newest first with all lines.
func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable)

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"timestamp": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"timestamp": *filter.ToDate})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	q = q.OrderBy("timestamp DESC", "number DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []orderRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]id.ID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	itemsByOrder, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(rows))
	for i, row := range rows {
		orders[i] = row.toOrder(itemsByOrder[row.ID])
	}

	return orders, nil
}

// UpdateStatus is the only permitted mutation of a committed order.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status order.Status) error {
	q := r.builder.Update(ordersTable).
		Set("status", status).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID.String())
	}

	return nil
}

// loadItems fetches item and add-on lines for a set of orders in two
// queries and groups them in memory.
func (r *OrderRepo) loadItems(ctx context.Context, orderIDs []id.ID) (map[id.ID][]order.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []itemRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	if len(items) == 0 {
		return nil, nil
	}

	lineIDs := make([]id.ID, len(items))
	for i, item := range items {
		lineIDs[i] = item.LineID
	}

	aq := r.builder.Select(addOnColumns...).
		From(orderAddOnsTable).
		Where(squirrel.Eq{"item_line_id": lineIDs}).
		OrderBy("item_line_id", "name")

	sql, args, err = aq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var addOns []addOnRow
	if err := pgxscan.Select(ctx, querier, &addOns, sql, args...); err != nil {
		return nil, fmt.Errorf("select add-ons: %w", err)
	}

	addOnsByItem := make(map[id.ID][]pricing.AddOn, len(items))
	for _, a := range addOns {
		addOnsByItem[a.ItemLineID] = append(addOnsByItem[a.ItemLineID], pricing.AddOn{
			Name:     a.Name,
			Price:    a.Price,
			Quantity: a.Quantity,
		})
	}

	result := make(map[id.ID][]order.Item, len(orderIDs))
	for _, row := range items {
		result[row.OrderID] = append(result[row.OrderID], row.toItem(addOnsByItem[row.LineID]))
	}

	return result, nil
}

func (row orderRow) toOrder(items []order.Item) order.Order {
	o := order.Order{
		ID:             row.ID,
		Number:         row.Number,
		Timestamp:      row.Timestamp,
		Items:          items,
		Total:          row.Total,
		PaymentMethod:  row.PaymentMethod,
		ServiceType:    row.ServiceType,
		ServiceFee:     row.ServiceFee,
		Status:         row.Status,
		AmountReceived: row.AmountReceived,
		Change:         row.Change,
		CreatedBy:      row.CreatedBy,
	}
	if row.CustomerName != nil {
		o.CustomerInfo.Name = *row.CustomerName
	}
	if row.CustomerPhone != nil {
		o.CustomerInfo.Phone = *row.CustomerPhone
	}
	return o
}

func (row itemRow) toItem(addOns []pricing.AddOn) order.Item {
	item := order.Item{
		ProductID:   row.ProductID,
		Name:        row.Name,
		Category:    row.Category,
		Price:       row.Price,
		BasePrice:   row.BasePrice,
		Temperature: row.Temperature,
		Quantity:    row.Quantity,
		AddOns:      addOns,
		Subtotal:    row.Subtotal,
		Total:       row.Total,
	}
	if row.DiscountType != nil {
		disc := pricing.Discount{Type: *row.DiscountType}
		if row.DiscountPercentage != nil {
			disc.Percentage = *row.DiscountPercentage
		}
		if row.DiscountAmount != nil {
			disc.Amount = *row.DiscountAmount
		}
		item.Discount = &disc
	}
	return item
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure interface compliance.
var _ order.Repository = (*OrderRepo)(nil)
