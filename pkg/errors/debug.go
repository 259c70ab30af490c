package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Postgres SQLSTATEs that mean a transaction lost a race for a row.
var lockConflictStates = map[string]struct{}{
	"55P03": {}, // lock_not_available
	"40P01": {}, // deadlock_detected
	"40001": {}, // serialization_failure
}

// ErrorDump is the log-side view of a failed request.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Retryable  bool     `json:"retryable"`
	Chain      []string `json:"chain,omitempty"`

	Item    *ItemRef     `json:"item,omitempty"`
	Storage *StorageDiag `json:"storage,omitempty"`
}

// ItemRef points at the order item a ledger error was raised for.
type ItemRef struct {
	Index    int    `json:"index"`
	RecordID string `json:"record_id,omitempty"`
	Rule     string `json:"rule,omitempty"`
}

// StorageDiag carries what the database said, from either postgres driver.
type StorageDiag struct {
	SQLState     string `json:"sql_state"`
	Constraint   string `json:"constraint,omitempty"`
	Table        string `json:"table,omitempty"`
	Column       string `json:"column,omitempty"`
	Detail       string `json:"detail,omitempty"`
	Message      string `json:"message,omitempty"`
	LockConflict bool   `json:"lock_conflict"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}

	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(d.Code).Retryable
		d.Item = itemRef(te.Details())
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.Storage = storageDiag(err)
	return d
}

// Fields flattens the dump into structured log fields, leaving out empty parts.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
		"retryable":   d.Retryable,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if d.Item != nil {
		fields["item_index"] = d.Item.Index
		if d.Item.RecordID != "" {
			fields["item_record_id"] = d.Item.RecordID
		}
		if d.Item.Rule != "" {
			fields["item_rule"] = d.Item.Rule
		}
	}
	if s := d.Storage; s != nil {
		fields["pg_code"] = s.SQLState
		fields["pg_lock_conflict"] = s.LockConflict
		for key, val := range map[string]string{
			"pg_constraint": s.Constraint,
			"pg_table":      s.Table,
			"pg_column":     s.Column,
			"pg_detail":     s.Detail,
			"pg_message":    s.Message,
		} {
			if val != "" {
				fields[key] = val
			}
		}
	}
	return fields
}

func itemRef(details any) *ItemRef {
	m, ok := details.(map[string]any)
	if !ok {
		return nil
	}
	idx, ok := m["item_index"].(int)
	if !ok {
		return nil
	}
	ref := &ItemRef{Index: idx}
	if id, ok := m["record_id"]; ok && id != nil {
		ref.RecordID = fmt.Sprint(id)
	}
	if rule, ok := m["rule"].(string); ok {
		ref.Rule = rule
	}
	return ref
}

func storageDiag(err error) *StorageDiag {
	var diag *StorageDiag

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		diag = &StorageDiag{
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	case errors.As(err, &pqErr):
		diag = &StorageDiag{
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	default:
		return nil
	}

	_, diag.LockConflict = lockConflictStates[diag.SQLState]
	return diag
}
