package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gunalchandran/grocery-backend/events"
	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/store"
)

// EventPublisher receives order lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.OrderEvent) error
}

// Caller is the authenticated account a request acts for.
type Caller struct {
	Email string
	Admin bool
}

// Orders runs the order workflow: placement with stock reservation,
// cancellation with stock restore, and status updates.
type Orders struct {
	orders   store.OrderStore
	products store.ProductStore
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

func NewOrders(orders store.OrderStore, products store.ProductStore, pub EventPublisher, logger *slog.Logger) *Orders {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orders{
		orders:   orders,
		products: products,
		events:   pub,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var (
	errQuantityNotInteger = errors.New("quantity is not an integer")
	errQuantityTooSmall   = errors.New("quantity is below 1")
)

// Place validates req, reserves stock and inserts the order. Stock is
// reserved first; if the insert fails the reservation is released.
func (o *Orders) Place(ctx context.Context, caller Caller, req models.OrderRequest) (string, error) {
	const op = "orders.Place"

	order, err := o.prepare(ctx, op, caller, req, false)
	if err != nil {
		return "", err
	}
	if err := o.products.ReserveStock(ctx, order.ProductID, order.Quantity); err != nil {
		return "", translate(op, err, "Product not found")
	}

	id, err := o.orders.InsertOrder(ctx, order)
	if err != nil {
		o.release(ctx, order.ProductID, order.Quantity)
		return "", translate(op, err, "")
	}

	o.publish(ctx, events.OrderPlaced, order)
	return id, nil
}

// PlaceBulk places every order or none. All orders are validated before
// any stock is touched, stock is then reserved in list order, and the
// orders are written in one batch. Any failure undoes the earlier steps.
func (o *Orders) PlaceBulk(ctx context.Context, caller Caller, reqs []models.OrderRequest) ([]string, error) {
	const op = "orders.PlaceBulk"

	if len(reqs) == 0 {
		return nil, newError(op, ErrValidation, "No orders provided")
	}

	batch := make([]*models.Order, 0, len(reqs))
	for _, req := range reqs {
		order, err := o.prepare(ctx, op, caller, req, true)
		if err != nil {
			return nil, err
		}
		batch = append(batch, order)
	}

	for i, order := range batch {
		if err := o.products.ReserveStock(ctx, order.ProductID, order.Quantity); err != nil {
			o.releaseAll(ctx, batch[:i])
			return nil, translate(op, err, fmt.Sprintf("Product with ID %s not found", order.ProductID))
		}
	}

	ids := make([]primitive.ObjectID, len(batch))
	for i, order := range batch {
		order.ID = primitive.NewObjectID()
		ids[i] = order.ID
	}
	inserted, err := o.orders.InsertOrders(ctx, batch)
	if err != nil {
		if derr := o.orders.DeleteOrders(ctx, ids); derr != nil {
			o.logger.Error("Failed to remove partial bulk insert", "orders", len(ids), "err", derr)
		}
		o.releaseAll(ctx, batch)
		return nil, translate(op, err, "")
	}

	for _, order := range batch {
		o.publish(ctx, events.OrderPlaced, order)
	}
	return inserted, nil
}

// Cancel moves a Pending order to Canceled and puts its quantity back into
// stock. Customers may only cancel their own orders.
func (o *Orders) Cancel(ctx context.Context, caller Caller, orderID string) error {
	const op = "orders.Cancel"
	const notYours = "Order not found or you don't have permission to cancel it"
	const notPending = "Order cannot be canceled, it's already processed or delivered"

	var (
		order *models.Order
		err   error
	)
	switch {
	case caller.Admin:
		order, err = o.orders.FindOrder(ctx, orderID)
	case strings.TrimSpace(caller.Email) == "":
		return newError(op, ErrValidation, "Email is required")
	default:
		order, err = o.orders.FindCustomerOrder(ctx, orderID, caller.Email)
	}
	if err != nil {
		return translate(op, err, notYours)
	}
	if order.DeliveryStatus != models.DeliveryPending {
		return newError(op, ErrInvalidState, notPending)
	}

	changed, err := o.orders.TransitionDelivery(ctx, orderID, models.DeliveryPending, models.DeliveryCanceled)
	if err != nil {
		return translate(op, err, "")
	}
	if !changed {
		// Someone else moved the order off Pending since we read it.
		return newError(op, ErrInvalidState, notPending)
	}

	if err := o.products.ReleaseStock(ctx, order.ProductID, order.Quantity); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			o.logger.Warn("Canceled order references a missing product, stock not restored",
				"order_id", orderID, "product_id", order.ProductID)
		} else {
			if _, rerr := o.orders.TransitionDelivery(ctx, orderID, models.DeliveryCanceled, models.DeliveryPending); rerr != nil {
				o.logger.Error("Failed to revert cancel after stock restore failure", "order_id", orderID, "err", rerr)
			}
			return translate(op, err, "")
		}
	}

	order.DeliveryStatus = models.DeliveryCanceled
	o.publish(ctx, events.OrderCanceled, order)
	return nil
}

// UpdateStatus sets both status fields. Reaching Delivered triggers the
// customer notification through the event bus.
func (o *Orders) UpdateStatus(ctx context.Context, orderID, paymentStatus, deliveryStatus string) error {
	const op = "orders.UpdateStatus"

	paymentStatus = strings.TrimSpace(paymentStatus)
	deliveryStatus = strings.TrimSpace(deliveryStatus)
	if paymentStatus == "" || deliveryStatus == "" {
		return newError(op, ErrValidation, "Missing payment status or delivery status")
	}

	order, err := o.orders.FindOrder(ctx, orderID)
	if err != nil {
		return translate(op, err, "Order not found")
	}
	matched, err := o.orders.UpdateOrderStatus(ctx, orderID, paymentStatus, deliveryStatus)
	if err != nil {
		return translate(op, err, "")
	}
	if matched == 0 {
		return newError(op, ErrNotFound, "Order not found")
	}

	order.PaymentStatus = paymentStatus
	order.DeliveryStatus = deliveryStatus
	o.publish(ctx, events.OrderStatusUpdated, order)
	return nil
}

// History lists orders for display. Admins see every order, optionally
// narrowed to one email; customers see only their own. No orders yields an
// empty slice.
func (o *Orders) History(ctx context.Context, caller Caller, email string) ([]models.OrderHistoryEntry, error) {
	const op = "orders.History"

	filter := caller.Email
	if caller.Admin {
		filter = strings.TrimSpace(email)
	} else if strings.TrimSpace(filter) == "" {
		return nil, newError(op, ErrValidation, "Email is required")
	}

	orders, err := o.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, translate(op, err, "")
	}
	entries := make([]models.OrderHistoryEntry, 0, len(orders))
	for _, order := range orders {
		entries = append(entries, historyEntry(order))
	}
	return entries, nil
}

// All returns every stored order as-is.
func (o *Orders) All(ctx context.Context) ([]models.Order, error) {
	orders, err := o.orders.ListOrders(ctx, "")
	if err != nil {
		return nil, translate("orders.All", err, "")
	}
	return orders, nil
}

// AdminSummaries returns the dashboard projection of every order.
func (o *Orders) AdminSummaries(ctx context.Context) ([]models.OrderSummary, error) {
	orders, err := o.All(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, models.OrderSummary{
			ID:             order.ID.Hex(),
			OrderDate:      order.OrderDate,
			DeliveryStatus: order.DeliveryStatus,
			PaymentMethod:  order.PaymentMethod,
			TotalPrice:     order.TotalPrice,
			ProductName:    order.ProductName,
			Quantity:       order.Quantity,
			Name:           order.Name,
			Email:          order.Email,
			Phone:          order.Phone,
			Address:        order.Address,
		})
	}
	return summaries, nil
}

// prepare validates one request and builds the order from the current
// product record. Client prices are never read.
func (o *Orders) prepare(ctx context.Context, op string, caller Caller, req models.OrderRequest, bulk bool) (*models.Order, error) {
	missingMsg := "Missing fields in order"
	notFoundMsg := "Product not found"
	if bulk {
		missingMsg = "Missing fields in one of the orders"
		notFoundMsg = fmt.Sprintf("Product with ID %s not found", req.ProductID)
	}

	if missing := missingOrderFields(req); len(missing) > 0 {
		return nil, &Error{Op: op, Kind: ErrValidation, Message: missingMsg,
			Err: fmt.Errorf("missing %s", strings.Join(missing, ", "))}
	}
	quantity, err := coerceQuantity(req.Quantity)
	switch {
	case errors.Is(err, errQuantityTooSmall):
		return nil, &Error{Op: op, Kind: ErrValidation, Message: "Quantity must be at least 1", Err: err}
	case err != nil:
		return nil, &Error{Op: op, Kind: ErrValidation, Message: "Quantity must be an integer", Err: err}
	}
	if !caller.Admin && !strings.EqualFold(strings.TrimSpace(req.Email), caller.Email) {
		return nil, newError(op, ErrForbidden, "Orders can only be placed for your own account")
	}

	product, err := o.products.FindProduct(ctx, strings.TrimSpace(req.ProductID))
	if errors.Is(err, store.ErrInvalidID) {
		return nil, &Error{Op: op, Kind: ErrValidation, Message: "Invalid product_id", Err: err}
	}
	if err != nil {
		return nil, translate(op, err, notFoundMsg)
	}

	// Customers are matched on the token subject everywhere else, so their
	// orders are stored under it.
	email := strings.TrimSpace(req.Email)
	if !caller.Admin {
		email = caller.Email
	}

	return &models.Order{
		Email:          email,
		Name:           req.Name,
		Phone:          req.Phone,
		ProductID:      product.ID.Hex(),
		ProductName:    req.ProductName,
		Quantity:       quantity,
		Price:          product.Price,
		TotalPrice:     lineTotal(product.Price, quantity),
		OrderDate:      req.OrderDate,
		OrderTime:      req.OrderTime,
		DeliveryTime:   req.DeliveryTime,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  req.PaymentStatus,
		DeliveryStatus: req.DeliveryStatus,
		Address:        req.Address,
		Image:          product.ImageURL,
		PlacedAt:       o.now(),
	}, nil
}

func missingOrderFields(req models.OrderRequest) []string {
	fields := []struct {
		name  string
		value string
	}{
		{"email", req.Email},
		{"name", req.Name},
		{"phone", req.Phone},
		{"product_id", req.ProductID},
		{"product_name", req.ProductName},
		{"order_date", req.OrderDate},
		{"order_time", req.OrderTime},
		{"delivery_time", req.DeliveryTime},
		{"payment_method", req.PaymentMethod},
		{"payment_status", req.PaymentStatus},
		{"delivery_status", req.DeliveryStatus},
		{"address", req.Address},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if req.Quantity == nil {
		missing = append(missing, "quantity")
	} else if s, ok := req.Quantity.(string); ok && strings.TrimSpace(s) == "" {
		missing = append(missing, "quantity")
	}
	return missing
}

// coerceQuantity accepts JSON integers, integral floats and integer
// strings. Anything else, including fractional values, is rejected.
func coerceQuantity(v any) (int, error) {
	var n int
	switch q := v.(type) {
	case int:
		n = q
	case int32:
		n = int(q)
	case int64:
		n = int(q)
	case float64:
		if q != math.Trunc(q) || math.Abs(q) > math.MaxInt32 {
			return 0, errQuantityNotInteger
		}
		n = int(q)
	case json.Number:
		i, err := q.Int64()
		if err != nil {
			return 0, errQuantityNotInteger
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil {
			return 0, errQuantityNotInteger
		}
		n = i
	default:
		return 0, errQuantityNotInteger
	}
	if n > math.MaxInt32 {
		return 0, errQuantityNotInteger
	}
	if n < 1 {
		return 0, errQuantityTooSmall
	}
	return n, nil
}

func (o *Orders) release(ctx context.Context, productID string, qty int) {
	if err := o.products.ReleaseStock(ctx, productID, qty); err != nil {
		o.logger.Error("Failed to release reserved stock", "product_id", productID, "quantity", qty, "err", err)
	}
}

func (o *Orders) releaseAll(ctx context.Context, orders []*models.Order) {
	for _, order := range orders {
		o.release(ctx, order.ProductID, order.Quantity)
	}
}

func (o *Orders) publish(ctx context.Context, eventType string, order *models.Order) {
	if o.events == nil {
		return
	}
	err := o.events.Publish(ctx, events.OrderEvent{
		Type:           eventType,
		OrderID:        order.ID.Hex(),
		Email:          order.Email,
		Name:           order.Name,
		ProductID:      order.ProductID,
		ProductName:    order.ProductName,
		Quantity:       order.Quantity,
		TotalPrice:     order.TotalPrice,
		PaymentStatus:  order.PaymentStatus,
		DeliveryStatus: order.DeliveryStatus,
		OccurredAt:     o.now(),
	})
	if err != nil {
		o.logger.Warn("Failed to publish order event", "type", eventType, "order_id", order.ID.Hex(), "err", err)
	}
}

func historyEntry(order models.Order) models.OrderHistoryEntry {
	return models.OrderHistoryEntry{
		ID:             order.ID.Hex(),
		Email:          order.Email,
		Name:           order.Name,
		Phone:          order.Phone,
		ProductID:      order.ProductID,
		ProductName:    order.ProductName,
		Quantity:       order.Quantity,
		Price:          order.Price,
		TotalPrice:     decimal.NewFromFloat(order.TotalPrice).StringFixed(2),
		OrderDate:      order.OrderDate,
		OrderTime:      order.OrderTime,
		DeliveryTime:   order.DeliveryTime,
		PaymentMethod:  order.PaymentMethod,
		PaymentStatus:  order.PaymentStatus,
		DeliveryStatus: order.DeliveryStatus,
		Address:        order.Address,
		Image:          order.Image,
	}
}
