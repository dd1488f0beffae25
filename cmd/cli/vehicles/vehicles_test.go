package vehicles

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/fleetyard/fleetyard/cmd/cli/config"
	"github.com/fleetyard/fleetyard/internal/models"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func loginForTest(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FLEETYARD_API_URL", apiURL)
	if err := config.SaveToken("test-token"); err != nil {
		t.Fatalf("save token: %v", err)
	}
}

func TestListVehicles_TableOutput(t *testing.T) {
	list := []models.Vehicle{
		{VIN: "1HGCM82633A123456", Maker: "Honda", Model: "Accord", Location: "Nave"},
		{VIN: "WVWZZZ1JZ3W386752", Maker: "Volkswagen", Model: "Golf", Location: "Taller Stellantis"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/vehicles" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Fatalf("unexpected auth header: %q", auth)
		}
		_ = json.NewEncoder(w).Encode(list)
	}))
	defer srv.Close()

	loginForTest(t, srv.URL)

	cmd := listVehiclesCmd()
	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "1HGCM82633A123456") || !strings.Contains(out, "Volkswagen") {
		t.Fatalf("expected vehicle rows in output, got: %s", out)
	}
}

func TestListEvents_TableOutput(t *testing.T) {
	old := "Nave"
	new_ := "Taller Stellantis"
	events := []models.ChangeEvent{
		{
			ID: 1, VehicleVIN: "1HGCM82633A123456", UpdatedBy: "maria",
			Changes: []models.FieldChange{{Field: "location", OldValue: &old, NewValue: &new_}},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(events)
	}))
	defer srv.Close()

	loginForTest(t, srv.URL)

	cmd := listEventsCmd()
	if err := cmd.Flags().Set("vin", "1HGCM82633A123456"); err != nil {
		t.Fatal(err)
	}
	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "location") || !strings.Contains(out, "maria") {
		t.Fatalf("expected event rows in output, got: %s", out)
	}
}
