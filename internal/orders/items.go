package orders

import (
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
)

const (
	ruleRequired      = "required"
	ruleInteger       = "integer"
	ruleNumeric       = "numeric"
	rulePositive      = "positive"
	ruleRecordExists  = "record_exists"
	ruleWithinStock   = "within_available"
	fieldRecordID     = "record_id"
	fieldQtyKg        = "qty_kg"
	detailItemIndex   = "item_index"
	detailRule        = "rule"
	detailField       = "field"
	detailRecordID    = "record_id"
	detailAvailable   = "available"
	detailRequested   = "requested"
	maxSafeIntInFloat = 1 << 53
)

type parsedItem struct {
	index    int
	recordID int64
	qty      float64
}

// parseItem turns the raw textual fields into typed values. An absent qty_kg
// reads as zero and is then rejected as non-positive.
func parseItem(index int, in ItemInput) (parsedItem, *pkgerrors.Error) {
	rawID := strings.TrimSpace(in.RecordID)
	if rawID == "" {
		return parsedItem{}, itemError(index, rawID, fieldRecordID, ruleRequired,
			"items[%d].record_id is required", index)
	}
	id, ok := parseRecordID(rawID)
	if !ok {
		return parsedItem{}, itemError(index, rawID, fieldRecordID, ruleInteger,
			"items[%d].record_id must be an integer", index)
	}

	qty := 0.0
	if rawQty := strings.TrimSpace(in.QtyKg); rawQty != "" {
		v, err := strconv.ParseFloat(rawQty, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return parsedItem{}, itemError(index, id, fieldQtyKg, ruleNumeric,
				"items[%d].qty_kg must be numeric", index)
		}
		qty = v
	}
	if qty <= 0 {
		return parsedItem{}, itemError(index, id, fieldQtyKg, rulePositive,
			"qty_kg must be > 0 for record %d", id)
	}

	return parsedItem{index: index, recordID: id, qty: qty}, nil
}

// parseRecordID accepts integer literals and integral floats such as "12.0".
func parseRecordID(raw string) (int64, bool) {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxSafeIntInFloat {
		return 0, false
	}
	return int64(f), true
}

func itemError(index int, recordID any, field, rule, format string, args ...any) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, format, args...).WithDetails(map[string]any{
		detailItemIndex: index,
		detailRecordID:  recordID,
		detailField:     field,
		detailRule:      rule,
	})
}

func recordIDs(items []parsedItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.recordID)
	}
	return ids
}

func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
