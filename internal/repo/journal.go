package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fleetyard/fleetyard/internal/diff"
	"github.com/fleetyard/fleetyard/internal/errs"
	"github.com/fleetyard/fleetyard/internal/models"
)

// JournalRepo persists change events. The journal is append-only: events are
// written once and never updated or deleted. updated_at is assigned by the
// database server (DEFAULT now()), never by the caller, so queries order
// consistently across concurrent writers regardless of client clock skew.
type JournalRepo struct {
	DB *sql.DB
}

func NewJournalRepo(db *sql.DB) *JournalRepo {
	return &JournalRepo{DB: db}
}

const appendEventSQL = `INSERT INTO vehicle_events (vehicle_vin, updated_by, changes)
	 VALUES ($1, $2, $3)
	 RETURNING id, updated_at`

// Append writes one change event. An empty change list is rejected before any
// write is attempted; the diff layer should have prevented the call, this is
// defense in depth.
func (r *JournalRepo) Append(ctx context.Context, vin, updatedBy string, changes []models.FieldChange) (models.ChangeEvent, error) {
	return appendEvent(ctx, r.DB, vin, updatedBy, changes)
}

// AppendTx is Append inside an existing transaction, used by the edit workflow
// to commit the record update and the journal entry as one logical write.
func (r *JournalRepo) AppendTx(ctx context.Context, tx *sql.Tx, vin, updatedBy string, changes []models.FieldChange) (models.ChangeEvent, error) {
	return appendEvent(ctx, tx, vin, updatedBy, changes)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func appendEvent(ctx context.Context, q rowQuerier, vin, updatedBy string, changes []models.FieldChange) (models.ChangeEvent, error) {
	if len(changes) == 0 {
		return models.ChangeEvent{}, errs.Validation("change event must contain at least one change", nil)
	}
	if updatedBy == "" {
		updatedBy = models.UpdatedByUnknown
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		return models.ChangeEvent{}, errs.Validation("changes are not serializable", nil)
	}

	ev := models.ChangeEvent{VehicleVIN: vin, UpdatedBy: updatedBy, Changes: changes}
	err = q.QueryRowContext(ctx, appendEventSQL, vin, updatedBy, payload).Scan(&ev.ID, &ev.UpdatedAt)
	if err != nil {
		return models.ChangeEvent{}, errs.Storage("append change event", err)
	}
	return ev, nil
}

const selectEventColumns = `SELECT id, vehicle_vin, updated_by, updated_at, changes FROM vehicle_events`

// QueryByVehicle returns all change events for a VIN, ascending by updated_at.
func (r *JournalRepo) QueryByVehicle(ctx context.Context, vin string) ([]models.ChangeEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		selectEventColumns+` WHERE vehicle_vin = $1 ORDER BY updated_at ASC`,
		vin,
	)
	if err != nil {
		return nil, errs.Storage("query events by vehicle", err)
	}
	return scanEvents(rows)
}

// QueryByTimeWindow returns change events with start <= updated_at <= end,
// inclusive on both ends, ascending by updated_at.
func (r *JournalRepo) QueryByTimeWindow(ctx context.Context, start, end time.Time) ([]models.ChangeEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		selectEventColumns+` WHERE updated_at >= $1 AND updated_at <= $2 ORDER BY updated_at ASC`,
		start, end,
	)
	if err != nil {
		return nil, errs.Storage("query events by window", err)
	}
	return scanEvents(rows)
}

// LatestComment returns the newest non-empty modification comment recorded for
// a VIN. ok is false when the vehicle has no prior comment; that is not an error.
func (r *JournalRepo) LatestComment(ctx context.Context, vin string) (comment string, ok bool, err error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT changes FROM vehicle_events WHERE vehicle_vin = $1 ORDER BY updated_at DESC`,
		vin,
	)
	if err != nil {
		return "", false, errs.Storage("query latest comment", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return "", false, errs.Storage("scan changes", err)
		}
		var changes []models.FieldChange
		if err := json.Unmarshal(raw, &changes); err != nil {
			return "", false, errs.Storage("decode changes", err)
		}
		for _, c := range changes {
			if c.Field == diff.FieldModificationComment && c.NewValue != nil && *c.NewValue != "" {
				return *c.NewValue, true, nil
			}
		}
	}
	return "", false, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]models.ChangeEvent, error) {
	defer rows.Close()

	var events []models.ChangeEvent
	for rows.Next() {
		var ev models.ChangeEvent
		var raw []byte
		if err := rows.Scan(&ev.ID, &ev.VehicleVIN, &ev.UpdatedBy, &ev.UpdatedAt, &raw); err != nil {
			return nil, errs.Storage("scan change event", err)
		}
		if err := json.Unmarshal(raw, &ev.Changes); err != nil {
			return nil, errs.Storage("decode changes", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
