// Package service implements the application workflows on top of the repo and
// storage layers: vehicle registration, the edit/journal write path, and
// report generation.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetyard/fleetyard/internal/diff"
	"github.com/fleetyard/fleetyard/internal/errs"
	"github.com/fleetyard/fleetyard/internal/metrics"
	"github.com/fleetyard/fleetyard/internal/models"
	"github.com/fleetyard/fleetyard/internal/repo"
	"github.com/fleetyard/fleetyard/internal/storage"
	"github.com/fleetyard/fleetyard/internal/vinscan"
)

// Upload is an in-memory file received from a client.
type Upload struct {
	Data        []byte
	ContentType string
}

// VehicleService owns the registration and edit workflows. Edits write the
// vehicle row and the journal entry in one database transaction.
type VehicleService struct {
	DB       *sql.DB
	Vehicles *repo.VehicleRepo
	Journal  *repo.JournalRepo
	Store    storage.ObjectStore
	Log      *slog.Logger
}

func NewVehicleService(db *sql.DB, store storage.ObjectStore, log *slog.Logger) *VehicleService {
	return &VehicleService{
		DB:       db,
		Vehicles: repo.NewVehicleRepo(db),
		Journal:  repo.NewJournalRepo(db),
		Store:    store,
		Log:      log,
	}
}

// RegisterInput is everything captured during intake registration. Photo and
// Evidences arrive as raw bytes; the service uploads them to the object store
// before the row is written so a failed upload leaves no record behind.
type RegisterInput struct {
	VIN              string
	Operator         string
	Location         string
	NumberPlate      string
	Maker            string
	Model            string
	Comments         string
	StateVerified    string
	EverythingOK     string
	RegistryDuration float64
	Photo            *Upload
	Evidences        []Upload
}

// Register validates and stores a new vehicle. When the maker is not supplied
// it is derived from the VIN's manufacturer prefix.
func (s *VehicleService) Register(ctx context.Context, in RegisterInput) (models.Vehicle, error) {
	in.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))
	if !vinscan.ValidVIN(in.VIN) {
		return models.Vehicle{}, errs.Validation("vin must be 17 characters (letters I, O, Q excluded)", map[string]string{"vin": "invalid"})
	}
	if strings.TrimSpace(in.Operator) == "" {
		return models.Vehicle{}, errs.Validation("operator is required", map[string]string{"operator": "required"})
	}
	if strings.TrimSpace(in.Location) == "" {
		return models.Vehicle{}, errs.Validation("location is required", map[string]string{"location": "required"})
	}
	if in.Photo == nil {
		return models.Vehicle{}, errs.Validation("intake photo is required", map[string]string{"photo": "required"})
	}
	if in.Maker == "" {
		in.Maker = vinscan.MakerFromVIN(in.VIN)
	}

	create := repo.CreateInput{
		VIN:              in.VIN,
		Operator:         in.Operator,
		Location:         in.Location,
		NumberPlate:      strings.TrimSpace(in.NumberPlate),
		Maker:            in.Maker,
		Model:            in.Model,
		Comments:         in.Comments,
		StateVerified:    in.StateVerified,
		EverythingOK:     in.EverythingOK,
		RegistryDuration: in.RegistryDuration,
	}

	key, err := s.upload(ctx, in.VIN, "photo", *in.Photo)
	if err != nil {
		return models.Vehicle{}, err
	}
	create.CarPicture = key

	for _, ev := range in.Evidences {
		key, err := s.upload(ctx, in.VIN, "evidence", ev)
		if err != nil {
			return models.Vehicle{}, err
		}
		create.Evidences = append(create.Evidences, key)
	}

	v, err := s.Vehicles.Create(ctx, create)
	if err != nil {
		return models.Vehicle{}, err
	}
	s.Log.Info("vehicle registered", "vin", v.VIN, "operator", v.Operator, "location", v.Location)
	return v, nil
}

// EditInput is one edit submission against an existing vehicle.
type EditInput struct {
	VIN       string
	UpdatedBy string
	Proposed  diff.Proposed
	// Photo, when present, is uploaded and recorded as the new car picture.
	Photo *Upload
}

// Edit applies an edit submission. The returned bool is false when the
// submission changed nothing; no event is written in that case. When changes
// exist, the row update and the journal append commit in one transaction.
func (s *VehicleService) Edit(ctx context.Context, in EditInput) (models.ChangeEvent, bool, error) {
	current, err := s.Vehicles.GetByVIN(ctx, in.VIN)
	if err != nil {
		return models.ChangeEvent{}, false, err
	}

	if in.Photo != nil {
		key, err := s.upload(ctx, current.VIN, "photo", *in.Photo)
		if err != nil {
			return models.ChangeEvent{}, false, err
		}
		in.Proposed.CarPicture = &key
	}

	changes := diff.Changes(current, in.Proposed)
	if len(changes) == 0 {
		metrics.IncEdits("noop")
		return models.ChangeEvent{}, false, nil
	}

	patch := make(map[string]string)
	for _, c := range changes {
		if c.Field == diff.FieldModificationComment {
			continue
		}
		patch[c.Field] = *c.NewValue
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.ChangeEvent{}, false, errs.Storage("begin edit", err)
	}
	defer tx.Rollback()

	if err := s.Vehicles.ApplyPatchTx(ctx, tx, current.VIN, patch); err != nil {
		return models.ChangeEvent{}, false, err
	}
	ev, err := s.Journal.AppendTx(ctx, tx, current.VIN, in.UpdatedBy, changes)
	if err != nil {
		return models.ChangeEvent{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return models.ChangeEvent{}, false, errs.Storage("commit edit", err)
	}

	metrics.IncEdits("applied")
	s.Log.Info("vehicle edited", "vin", current.VIN, "updated_by", ev.UpdatedBy, "changes", len(changes))
	return ev, true, nil
}

// History returns the full change journal for a VIN, oldest first. The vehicle
// must exist; an unknown VIN is NotFound even when it has no events.
func (s *VehicleService) History(ctx context.Context, vin string) ([]models.ChangeEvent, error) {
	if _, err := s.Vehicles.GetByVIN(ctx, vin); err != nil {
		return nil, err
	}
	return s.Journal.QueryByVehicle(ctx, vin)
}

// LatestComment returns the newest modification comment for a VIN, or ok=false
// when none has been recorded.
func (s *VehicleService) LatestComment(ctx context.Context, vin string) (string, bool, error) {
	if _, err := s.Vehicles.GetByVIN(ctx, vin); err != nil {
		return "", false, err
	}
	return s.Journal.LatestComment(ctx, vin)
}

func (s *VehicleService) upload(ctx context.Context, vin, kind string, u Upload) (string, error) {
	key := fmt.Sprintf("vehicles/%s/%s_%s%s", vin, kind, uuid.NewString(), extFor(u.ContentType))
	if _, err := s.Store.Put(ctx, key, u.ContentType, u.Data); err != nil {
		return "", err
	}
	return key, nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
