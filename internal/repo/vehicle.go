package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fleetyard/fleetyard/internal/errs"
	"github.com/fleetyard/fleetyard/internal/models"
)

const vehicleColumns = `id, vin, operator, location, number_plate, maker, model, availability,
	comments, car_picture, evidences, state_verified, everything_ok, registry_duration, created_at, closed_at`

// VehicleRepo persists vehicle records. Rows are created once at registration
// and mutated field-by-field through the edit workflow; they are never deleted.
type VehicleRepo struct {
	DB *sql.DB
}

func NewVehicleRepo(db *sql.DB) *VehicleRepo {
	return &VehicleRepo{DB: db}
}

// CreateInput carries everything captured during intake registration.
type CreateInput struct {
	VIN              string
	Operator         string
	Location         string
	NumberPlate      string
	Maker            string
	Model            string
	Comments         string
	CarPicture       string
	Evidences        []string
	StateVerified    string
	EverythingOK     string
	RegistryDuration float64
}

// Create inserts a new vehicle row and returns it with id and created_at set.
func (r *VehicleRepo) Create(ctx context.Context, in CreateInput) (models.Vehicle, error) {
	var v models.Vehicle
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO vehicles (vin, operator, location, number_plate, maker, model,
			comments, car_picture, evidences, state_verified, everything_ok, registry_duration)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+vehicleColumns,
		in.VIN, in.Operator, in.Location, in.NumberPlate, in.Maker, in.Model,
		in.Comments, in.CarPicture, pq.Array(in.Evidences), in.StateVerified, in.EverythingOK, in.RegistryDuration,
	).Scan(vehicleFields(&v)...)
	if err != nil {
		if e, ok := err.(*pq.Error); ok && e.Code == "23505" {
			return models.Vehicle{}, errs.Validation("a vehicle with this VIN already exists", map[string]string{"vin": "duplicate"})
		}
		return models.Vehicle{}, errs.Storage("create vehicle", err)
	}
	return v, nil
}

// GetByVIN returns the vehicle for the given VIN or a NotFound error.
func (r *VehicleRepo) GetByVIN(ctx context.Context, vin string) (models.Vehicle, error) {
	var v models.Vehicle
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE vin = $1`,
		vin,
	).Scan(vehicleFields(&v)...)
	if err == sql.ErrNoRows {
		return models.Vehicle{}, errs.NotFound("vehicle", vin)
	}
	if err != nil {
		return models.Vehicle{}, errs.Storage("get vehicle", err)
	}
	return v, nil
}

// List returns vehicles ordered by registration time, newest first.
func (r *VehicleRepo) List(ctx context.Context, limit, offset int) ([]models.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, errs.Storage("list vehicles", err)
	}
	defer rows.Close()

	var list []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(vehicleFields(&v)...); err != nil {
			return nil, errs.Storage("scan vehicle", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// Patchable columns for the edit workflow, in the order they appear in the
// UPDATE statement. The diff layer is the authority on what may change; this
// list is defense in depth against a stray column name.
var patchableColumns = []string{"location", "number_plate", "availability", "car_picture"}

// ApplyPatchTx updates the given columns on the vehicle row inside tx. The
// journal append for the same edit runs in the same transaction, so a failure
// of either leaves both untouched.
func (r *VehicleRepo) ApplyPatchTx(ctx context.Context, tx *sql.Tx, vin string, patch map[string]string) error {
	if len(patch) == 0 {
		return nil
	}
	for col := range patch {
		known := false
		for _, p := range patchableColumns {
			if p == col {
				known = true
				break
			}
		}
		if !known {
			return errs.Validation(fmt.Sprintf("field %q is not editable", col), nil)
		}
	}

	sets := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch)+1)
	for _, col := range patchableColumns {
		val, ok := patch[col]
		if !ok {
			continue
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, vin)

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE vehicles SET %s WHERE vin = $%d", strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		return errs.Storage("update vehicle", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound("vehicle", vin)
	}
	return nil
}

func vehicleFields(v *models.Vehicle) []any {
	return []any{
		&v.ID, &v.VIN, &v.Operator, &v.Location, &v.NumberPlate, &v.Maker, &v.Model,
		&v.Availability, &v.Comments, &v.CarPicture, pq.Array(&v.Evidences),
		&v.StateVerified, &v.EverythingOK, &v.RegistryDuration, &v.CreatedAt, &v.ClosedAt,
	}
}
