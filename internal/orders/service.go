package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agrogas/agrogas-backend/pkg/db"
	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"github.com/agrogas/agrogas-backend/pkg/enums"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the order ledger: it turns buyer requests into committed orders
// that draw down record availability.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	ListOrders(ctx context.Context) ([]OrderDTO, error)
}

type service struct {
	repo      Repository
	inventory Inventory
	tx        txRunner
	recorder  Recorder
	now       func() time.Time
}

// Option customizes the ledger service.
type Option func(*service)

// WithClock overrides the source of created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService builds the ledger with the required dependencies.
func NewService(repo Repository, inventory Inventory, tx txRunner, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	s := &service{
		repo:      repo,
		inventory: inventory,
		tx:        tx,
		recorder:  nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// checkedLine is an item that passed every check, with the availability it
// was checked against.
type checkedLine struct {
	parsedItem
	record    models.Record
	available float64
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	started := time.Now()
	result, totalKg, err := s.placeOrder(ctx, input)
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.recorder.ObserveFailure(string(code), time.Since(started))
		return nil, err
	}
	s.recorder.ObservePlaced(totalKg, time.Since(started))
	return result, nil
}

// placeOrder validates items strictly in list order. Parsing runs first and
// only stops at the first malformed item; records referenced before that
// point are then locked in ascending id order and checked in list order, so
// the error reported is always the one for the earliest bad item while row
// locks are still taken deadlock-free.
func (s *service) placeOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, float64, error) {
	buyer := strings.TrimSpace(input.BuyerName)
	if buyer == "" {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "buyer_name is required").
			WithDetails(map[string]any{detailField: "buyer_name", detailRule: ruleRequired})
	}
	if len(input.Items) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "items must be a non-empty list").
			WithDetails(map[string]any{detailField: "items", detailRule: ruleRequired})
	}

	parsed := make([]parsedItem, 0, len(input.Items))
	var parseErr *pkgerrors.Error
	for i, raw := range input.Items {
		item, err := parseItem(i, raw)
		if err != nil {
			parseErr = err
			break
		}
		parsed = append(parsed, item)
	}
	if len(parsed) == 0 {
		return nil, 0, parseErr
	}

	var (
		order   *models.Order
		totalKg float64
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := s.inventory.Lock(ctx, tx, recordIDs(parsed))
		if err != nil {
			return storageError(err, "lock records")
		}

		lines, err := checkStock(parsed, locked)
		if err != nil {
			return err
		}
		if parseErr != nil {
			return parseErr
		}

		order, totalKg, err = s.buildOrder(buyer, input, lines)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "price order")
		}
		if err := s.repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return storageError(err, "create order")
		}

		for _, line := range lines {
			ok, err := s.inventory.Decrement(ctx, tx, line.recordID, line.qty)
			if err != nil {
				return storageError(err, "decrement availability")
			}
			if !ok {
				return insufficientStock(line.parsedItem, line.available)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, storageError(err, "commit order")
	}

	return &PlaceOrderResult{
		OrderID:    order.ID,
		TotalPrice: order.TotalPrice.InexactFloat64(),
		Total:      order.TotalPrice,
	}, totalKg, nil
}

// checkStock walks items in list order against a running per-record balance,
// so repeated record ids within one order share the same availability.
func checkStock(items []parsedItem, locked map[int64]models.Record) ([]checkedLine, error) {
	remaining := make(map[int64]float64, len(locked))
	lines := make([]checkedLine, 0, len(items))
	for _, it := range items {
		rec, ok := locked[it.recordID]
		if !ok {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "record %d not found", it.recordID).
				WithDetails(map[string]any{
					detailItemIndex: it.index,
					detailRecordID:  it.recordID,
					detailRule:      ruleRecordExists,
				})
		}
		available, seen := remaining[it.recordID]
		if !seen {
			available = rec.Available()
		}
		if it.qty > available {
			return nil, insufficientStock(it, available)
		}
		remaining[it.recordID] = available - it.qty
		lines = append(lines, checkedLine{parsedItem: it, record: rec, available: available})
	}
	return lines, nil
}

func (s *service) buildOrder(buyer string, input PlaceOrderInput, lines []checkedLine) (*models.Order, float64, error) {
	total := decimal.Zero
	totalKg := 0.0
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		unit := line.record.UnitPrice()
		lt, err := lineTotal(unit, line.qty)
		if err != nil {
			return nil, 0, err
		}
		total = total.Add(lt)
		totalKg += line.qty
		items = append(items, models.OrderItem{
			RecordID:  line.recordID,
			QtyKg:     line.qty,
			UnitPrice: unit,
			LineTotal: lt,
		})
	}
	return &models.Order{
		BuyerName:     buyer,
		BuyerPhone:    trimmedOrNil(input.BuyerPhone),
		BuyerLocation: trimmedOrNil(input.BuyerLocation),
		TotalPrice:    roundMoney(total),
		Status:        enums.OrderStatusPlaced,
		CreatedAt:     s.now().UTC(),
		Items:         items,
	}, totalKg, nil
}

func (s *service) ListOrders(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, storageError(err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func insufficientStock(it parsedItem, available float64) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeInsufficientStock,
		"not enough available quantity for record %d (available=%s, requested=%s)",
		it.recordID, formatKg(available), formatKg(it.qty),
	).WithDetails(map[string]any{
		detailItemIndex: it.index,
		detailRecordID:  it.recordID,
		detailRule:      ruleWithinStock,
		detailAvailable: available,
		detailRequested: it.qty,
	})
}

// storageError keeps typed errors as they are and classifies driver errors:
// lost lock races are retryable conflicts, anything else is internal.
func storageError(err error, action string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsLockConflict(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "records are busy with a concurrent order, retry")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

type nopRecorder struct{}

func (nopRecorder) ObservePlaced(float64, time.Duration) {}
func (nopRecorder) ObserveFailure(string, time.Duration) {}
