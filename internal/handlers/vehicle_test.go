package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"

	"github.com/fleetyard/fleetyard/internal/service"
	"github.com/fleetyard/fleetyard/internal/storage"
)

const testVIN = "1HGCM82633A123456"

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

// nullStore satisfies ObjectStore for tests that never upload.
type nullStore struct{}

func (nullStore) Put(_ context.Context, key, _ string, _ []byte) (string, error) { return key, nil }
func (nullStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.example/" + key, nil
}

var _ storage.ObjectStore = nullStore{}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var vehicleCols = []string{
	"id", "vin", "operator", "location", "number_plate", "maker", "model", "availability",
	"comments", "car_picture", "evidences", "state_verified", "everything_ok",
	"registry_duration", "created_at", "closed_at",
}

func vehicleRow() *sqlmock.Rows {
	return sqlmock.NewRows(vehicleCols).AddRow(
		1, testVIN, "maria", "Nave", "", "Honda", "Accord", "disponible",
		"", "vehicles/key.jpg", []byte("{}"), "si", "si",
		42.5, time.Now(), nil,
	)
}

func TestVehicleHandler_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO vehicles`).
		WithArgs(testVIN, "maria", "Nave", "", "Honda", "Accord", "", sqlmock.AnyArg(),
			sqlmock.AnyArg(), "si", "si", 42.5).
		WillReturnRows(vehicleRow())

	h := &VehicleHandler{Svc: service.NewVehicleService(db, nullStore{}, testLogger())}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"vin": testVIN, "operator": "maria", "location": "Nave",
		"model": "Accord", "state_verified": "si", "everything_ok": "si",
		"registry_duration": "42.5",
	} {
		if err := form.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	photo, err := form.CreateFormFile("photo", "car.jpg")
	if err != nil {
		t.Fatal(err)
	}
	photo.Write([]byte("jpeg bytes"))
	form.Close()

	req := httptest.NewRequest("POST", "/v1/vehicles", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201, body %s", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVehicleHandler_Register_MissingOperator(t *testing.T) {
	h := &VehicleHandler{}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("vin", testVIN)
	form.Close()

	req := httptest.NewRequest("POST", "/v1/vehicles", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestVehicleHandler_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM vehicles WHERE vin = \$1`).
		WithArgs(testVIN).
		WillReturnRows(vehicleRow())

	h := &VehicleHandler{Svc: service.NewVehicleService(db, nullStore{}, testLogger())}

	req := requestWithChiURLParams("GET", "/v1/vehicles/"+testVIN, nil, map[string]string{"vin": testVIN})
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Get status: got %d, want 200", rr.Code)
	}
	var out struct {
		VIN   string `json:"vin"`
		Maker string `json:"maker"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.VIN != testVIN || out.Maker != "Honda" {
		t.Errorf("unexpected body: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVehicleHandler_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM vehicles WHERE vin = \$1`).
		WithArgs(testVIN).
		WillReturnRows(sqlmock.NewRows(vehicleCols))

	h := &VehicleHandler{Svc: service.NewVehicleService(db, nullStore{}, testLogger())}

	req := requestWithChiURLParams("GET", "/v1/vehicles/"+testVIN, nil, map[string]string{"vin": testVIN})
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestVehicleHandler_SubmitEdit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM vehicles WHERE vin = \$1`).
		WithArgs(testVIN).
		WillReturnRows(vehicleRow())
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE vehicles SET location = \$1 WHERE vin = \$2`).
		WithArgs("Taller Stellantis", testVIN).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO vehicle_events`).
		WithArgs(testVIN, "desconocido", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow(5, time.Now()))
	mock.ExpectCommit()

	h := &VehicleHandler{Svc: service.NewVehicleService(db, nullStore{}, testLogger())}

	body := []byte(`{"location":"Taller Stellantis"}`)
	req := requestWithChiURLParams("POST", "/v1/vehicles/"+testVIN+"/edits", body, map[string]string{"vin": testVIN})
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.SubmitEdit(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200, body %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Applied bool `json:"applied"`
		Event   struct {
			ID int64 `json:"id"`
		} `json:"event"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Applied || out.Event.ID != 5 {
		t.Errorf("unexpected body: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVehicleHandler_SubmitEdit_Noop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM vehicles WHERE vin = \$1`).
		WithArgs(testVIN).
		WillReturnRows(vehicleRow())

	h := &VehicleHandler{Svc: service.NewVehicleService(db, nullStore{}, testLogger())}

	body := []byte(`{"location":"Nave"}`)
	req := requestWithChiURLParams("POST", "/v1/vehicles/"+testVIN+"/edits", body, map[string]string{"vin": testVIN})
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.SubmitEdit(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var out struct {
		Applied bool `json:"applied"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Applied {
		t.Error("no-op edit must report applied=false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestVehicleHandler_SubmitEdit_InvalidJSON(t *testing.T) {
	h := &VehicleHandler{}

	req := requestWithChiURLParams("POST", "/v1/vehicles/"+testVIN+"/edits", []byte(`{nope`), map[string]string{"vin": testVIN})
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.SubmitEdit(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestVehicleHandler_ListEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM vehicles WHERE vin = \$1`).
		WithArgs(testVIN).
		WillReturnRows(vehicleRow())
	changes := `[{"field":"location","oldValue":"Nave","newValue":"Taller Stellantis"}]`
	mock.ExpectQuery(`SELECT id, vehicle_vin, updated_by, updated_at, changes FROM vehicle_events WHERE vehicle_vin = \$1 ORDER BY updated_at ASC`).
		WithArgs(testVIN).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_vin", "updated_by", "updated_at", "changes"}).
			AddRow(1, testVIN, "maria", time.Now(), []byte(changes)))

	h := &VehicleHandler{Svc: service.NewVehicleService(db, nullStore{}, testLogger())}

	req := requestWithChiURLParams("GET", "/v1/vehicles/"+testVIN+"/events", nil, map[string]string{"vin": testVIN})
	rr := httptest.NewRecorder()
	h.ListEvents(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var events []struct {
		UpdatedBy string `json:"updatedBy"`
		Changes   []struct {
			Field string `json:"field"`
		} `json:"changes"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&events); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(events) != 1 || len(events[0].Changes) != 1 || events[0].Changes[0].Field != "location" {
		t.Errorf("unexpected events: %+v", events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
