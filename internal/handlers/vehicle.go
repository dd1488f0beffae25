package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fleetyard/fleetyard/internal/diff"
	"github.com/fleetyard/fleetyard/internal/middleware"
	"github.com/fleetyard/fleetyard/internal/models"
	"github.com/fleetyard/fleetyard/internal/service"
)

type VehicleHandler struct {
	Svc *service.VehicleService
}

// Register handles intake registration. The request is multipart/form-data:
// text fields plus a "photo" file and any number of "evidences" files.
func (h *VehicleHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(middleware.UploadMaxBodyBytes); err != nil {
		JSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	input := struct {
		VIN      string `validate:"required,len=17"`
		Operator string `validate:"required,min=2,max=255"`
		Location string `validate:"required,max=255"`
	}{
		VIN:      strings.ToUpper(strings.TrimSpace(r.FormValue("vin"))),
		Operator: r.FormValue("operator"),
		Location: r.FormValue("location"),
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	duration, _ := strconv.ParseFloat(r.FormValue("registry_duration"), 64)

	in := service.RegisterInput{
		VIN:              input.VIN,
		Operator:         input.Operator,
		Location:         input.Location,
		NumberPlate:      r.FormValue("number_plate"),
		Maker:            r.FormValue("maker"),
		Model:            r.FormValue("model"),
		Comments:         r.FormValue("comments"),
		StateVerified:    r.FormValue("state_verified"),
		EverythingOK:     r.FormValue("everything_ok"),
		RegistryDuration: duration,
	}

	photo, err := formUpload(r, "photo")
	if err != nil {
		JSONError(w, "unreadable photo", http.StatusBadRequest)
		return
	}
	in.Photo = photo

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["evidences"] {
			up, err := readUpload(fh)
			if err != nil {
				JSONError(w, "unreadable evidence file", http.StatusBadRequest)
				return
			}
			in.Evidences = append(in.Evidences, *up)
		}
	}

	v, err := h.Svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Get returns the current record for a VIN.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "vin")
	v, err := h.Svc.Vehicles.GetByVIN(r.Context(), vin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// List returns vehicles newest-first with limit/offset pagination.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	// Default pagination
	limit := 50
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	list, err := h.Svc.Vehicles.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, list)
}

// SubmitEdit applies one edit to a vehicle. A JSON body carries the proposed
// field values; a multipart body additionally carries a replacement "photo".
// A submission that changes nothing gets 200 with applied=false and writes
// no event.
func (h *VehicleHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "vin")

	in := service.EditInput{
		VIN:       vin,
		UpdatedBy: middleware.Username(r.Context()),
	}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(middleware.UploadMaxBodyBytes); err != nil {
			JSONError(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		in.Proposed = proposedFromForm(r)
		photo, err := formUpload(r, "photo")
		if err != nil {
			JSONError(w, "unreadable photo", http.StatusBadRequest)
			return
		}
		in.Photo = photo
	} else {
		if err := json.NewDecoder(r.Body).Decode(&in.Proposed); err != nil {
			JSONError(w, "invalid json", http.StatusBadRequest)
			return
		}
	}

	ev, applied, err := h.Svc.Edit(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	if !applied {
		writeJSON(w, http.StatusOK, map[string]any{"applied": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": true, "event": ev})
}

// ListEvents returns the full change journal for a VIN, oldest first.
func (h *VehicleHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "vin")
	events, err := h.Svc.History(r.Context(), vin)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []models.ChangeEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// LatestComment returns the most recent modification comment for a VIN.
// found=false means the vehicle exists but has no comment yet.
func (h *VehicleHandler) LatestComment(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "vin")
	comment, found, err := h.Svc.LatestComment(r.Context(), vin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comment": comment, "found": found})
}

// proposedFromForm lifts the editable fields out of a multipart form. A field
// that is absent from the form means "no change", matching the JSON contract.
func proposedFromForm(r *http.Request) diff.Proposed {
	var p diff.Proposed
	if r.MultipartForm == nil {
		return p
	}
	get := func(name string) *string {
		vals, ok := r.MultipartForm.Value[name]
		if !ok || len(vals) == 0 {
			return nil
		}
		return &vals[0]
	}
	p.Location = get("location")
	p.NumberPlate = get("number_plate")
	p.Availability = get("availability")
	p.ModificationComment = get("modificationComment")
	return p
}

// formUpload reads the named file field, nil when the field is absent.
func formUpload(r *http.Request, field string) (*service.Upload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	return readUpload(r.MultipartForm.File[field][0])
}

func readUpload(fh *multipart.FileHeader) (*service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &service.Upload{Data: data, ContentType: ct}, nil
}
