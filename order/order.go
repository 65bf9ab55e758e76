// Package order composes the session and the document store to submit and
// list orders. It never mutates the cart; clearing after a purchase is the
// caller's decision so "buy one item" and "buy whole cart" share one
// primitive.
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/verdantmart/storefront/cart"
	"github.com/verdantmart/storefront/docstore"
	"github.com/verdantmart/storefront/internal/errors"
	"github.com/verdantmart/storefront/internal/log"
	"github.com/verdantmart/storefront/internal/otel"
	"github.com/verdantmart/storefront/session"
)

const (
	ordersCollection = "orders"

	StatusCompleted = "completed"

	// orderDateFormat keeps a fixed-width fraction so the lexicographic sort
	// the document store performs matches chronological order; RFC3339Nano
	// trims trailing zeros, which breaks that for whole-second timestamps.
	orderDateFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

type Line struct {
	ProductID  string
	Title      string
	Price      decimal.Decimal
	Quantity   int
	Image      string
	TotalPrice decimal.Decimal
}

// Order is immutable once created; history is append-only per user. StoreID
// is the storage-assigned identifier, OrderID the time-derived one minted at
// submission.
type Order struct {
	OrderID       string
	StoreID       string
	UserID        string
	UserEmail     string
	UserName      string
	Items         []Line
	TotalAmount   decimal.Decimal
	TotalQuantity int
	OrderDate     time.Time
	Status        string
}

type Workflow struct {
	sessions *session.Manager
	docs     docstore.Store
}

func NewWorkflow(sessions *session.Manager, docs docstore.Store) *Workflow {
	return &Workflow{sessions: sessions, docs: docs}
}

// LinesFromCart builds order lines from a cart snapshot, one line per item
// with its line total.
func LinesFromCart(snapshot cart.Snapshot) []Line {
	lines := make([]Line, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		lines = append(lines, Line{
			ProductID:  item.ProductID,
			Title:      item.Title,
			Price:      item.Price,
			Quantity:   item.Quantity,
			Image:      item.Image,
			TotalPrice: item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return lines
}

func (w *Workflow) Submit(
	c context.Context,
	lines []Line,
	totalAmount decimal.Decimal,
	totalQuantity int,
) (Order, error) {
	c, span := otel.Tracer.Start(c, "OrderWorkflow Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderWorkflow Submit").
		Logger()

	current := w.sessions.Snapshot()
	if current.Status != session.Authenticated || current.User == nil {
		err := errors.OrderError{Err: errors.ErrNotAuthenticated}
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	if len(lines) == 0 {
		err := errors.OrderError{Err: errors.ErrEmptyOrder}
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}

	user := *current.User
	userName := user.DisplayName
	if userName == "" {
		userName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}

	order := Order{
		OrderID:       newOrderID(),
		UserID:        user.UID,
		UserEmail:     user.Email,
		UserName:      userName,
		Items:         lines,
		TotalAmount:   totalAmount,
		TotalQuantity: totalQuantity,
		OrderDate:     time.Now().UTC(),
		Status:        StatusCompleted,
	}
	logger = logger.With().
		Str(log.KeyOrderID, order.OrderID).
		Str(log.KeyUserID, order.UserID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "persisting order").Logger()
	logger.Info().Msg("persisting order")
	storeID, err := w.docs.Add(c, ordersCollection, documentFromOrder(order))
	if err != nil {
		err = fmt.Errorf("failed persisting order with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, errors.OrderError{Err: err}
	}
	order.StoreID = storeID
	logger.Info().Msg("persisted order")

	return order, nil
}

// List fetches the current user's orders, most recent first. Zero orders is
// success, not an error.
func (w *Workflow) List(c context.Context) ([]Order, error) {
	c, span := otel.Tracer.Start(c, "OrderWorkflow List")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderWorkflow List").
		Logger()

	current := w.sessions.Snapshot()
	if current.Status != session.Authenticated || current.User == nil {
		err := errors.OrderError{Err: errors.ErrNotAuthenticated}
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger = logger.With().Str(log.KeyUserID, current.User.UID).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	entries, err := w.docs.Query(
		c,
		ordersCollection,
		docstore.Filter{Field: "userId", Value: current.User.UID},
		docstore.Order{Field: "orderDate", Desc: true},
	)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, errors.OrderError{Err: err}
	}

	orders := make([]Order, 0, len(entries))
	for _, entry := range entries {
		orders = append(orders, orderFromEntry(entry))
	}
	logger.Info().Int(log.KeyOrderCount, len(orders)).Msg("found orders")

	return orders, nil
}

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func newOrderID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = orderIDAlphabet[rand.Intn(len(orderIDAlphabet))]
	}
	return fmt.Sprintf("ORDER-%d-%s", time.Now().UnixMilli(), suffix)
}

func documentFromOrder(order Order) docstore.Document {
	items := make([]interface{}, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, map[string]interface{}{
			"id":         line.ProductID,
			"title":      line.Title,
			"price":      line.Price.String(),
			"quantity":   line.Quantity,
			"image":      line.Image,
			"totalPrice": line.TotalPrice.String(),
		})
	}
	return docstore.Document{
		"orderId":       order.OrderID,
		"userId":        order.UserID,
		"userEmail":     order.UserEmail,
		"userName":      order.UserName,
		"items":         items,
		"totalAmount":   order.TotalAmount.String(),
		"totalQuantity": order.TotalQuantity,
		"orderDate":     order.OrderDate.Format(orderDateFormat),
		"status":        order.Status,
	}
}

func orderFromEntry(entry docstore.Entry) Order {
	doc := entry.Doc
	order := Order{
		StoreID:   entry.Key,
		OrderID:   docString(doc, "orderId"),
		UserID:    docString(doc, "userId"),
		UserEmail: docString(doc, "userEmail"),
		UserName:  docString(doc, "userName"),
		Status:    docString(doc, "status"),
	}
	order.TotalAmount = docDecimal(doc["totalAmount"])
	order.TotalQuantity = docInt(doc["totalQuantity"])
	if raw, ok := doc["orderDate"].(string); ok {
		if orderDate, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			order.OrderDate = orderDate
		}
	}
	if items, ok := doc["items"].([]interface{}); ok {
		for _, rawLine := range items {
			line, ok := rawLine.(map[string]interface{})
			if !ok {
				continue
			}
			order.Items = append(order.Items, Line{
				ProductID:  docString(line, "id"),
				Title:      docString(line, "title"),
				Price:      docDecimal(line["price"]),
				Quantity:   docInt(line["quantity"]),
				Image:      docString(line, "image"),
				TotalPrice: docDecimal(line["totalPrice"]),
			})
		}
	}
	return order
}

func docString(doc map[string]interface{}, field string) string {
	v, _ := doc[field].(string)
	return v
}

func docDecimal(v interface{}) decimal.Decimal {
	switch value := v.(type) {
	case string:
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(value)
	case json.Number:
		if d, err := decimal.NewFromString(value.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func docInt(v interface{}) int {
	switch value := v.(type) {
	case int:
		return value
	case float64:
		return int(value)
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}
