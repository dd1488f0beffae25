package vinscan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetyard/fleetyard/internal/errs"
)

func TestValidVIN(t *testing.T) {
	cases := []struct {
		vin  string
		want bool
	}{
		{"1HGCM82633A123456", true},
		{"1HGCM82633A12345", false},   // 16 chars
		{"1HGCM82633A1234567", false}, // 18 chars
		{"1HGCM82633A12345I", false},  // I excluded
		{"1HGCM82633A12345O", false},  // O excluded
		{"1HGCM82633A12345Q", false},  // Q excluded
		{"", false},
	}
	for _, c := range cases {
		if got := ValidVIN(c.vin); got != c.want {
			t.Errorf("ValidVIN(%q) = %v, want %v", c.vin, got, c.want)
		}
	}
}

func TestFindVIN(t *testing.T) {
	vin, ok := FindVIN("label text VIN: 1HGCM82633A123456 made in 2003")
	if !ok || vin != "1HGCM82633A123456" {
		t.Fatalf("got %q ok=%v", vin, ok)
	}

	if _, ok := FindVIN("no vehicle number here"); ok {
		t.Fatal("expected no match")
	}

	// An 18-char run must not yield a 17-char match.
	if _, ok := FindVIN("X1HGCM82633A1234567Y"); ok {
		t.Fatal("expected no match inside longer token")
	}
}

func TestExtractVIN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		w.Write([]byte(`{"text":"placa 1HGCM82633A123456"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	vin, err := c.ExtractVIN(context.Background(), []byte("fake image"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vin != "1HGCM82633A123456" {
		t.Errorf("vin = %q", vin)
	}
}

func TestExtractVIN_NoTextDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ExtractVIN(context.Background(), []byte("img"))
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExtractVIN_TextWithoutVIN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"some unrelated text"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ExtractVIN(context.Background(), []byte("img"))
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExtractVIN_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ExtractVIN(context.Background(), []byte("img"))
	if !errs.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestExtractVIN_UnconfiguredURL(t *testing.T) {
	c := NewClient("")
	_, err := c.ExtractVIN(context.Background(), []byte("img"))
	if !errs.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestMakerFromVIN(t *testing.T) {
	cases := []struct {
		vin, want string
	}{
		{"1HGCM82633A123456", "Honda"},
		{"WVWZZZ1JZ3W386752", "Volkswagen"},
		{"5YJ3E1EA7KF000316", "Tesla"},
		{"ZZZ00000000000000", ""},
		{"1H", ""},
	}
	for _, c := range cases {
		if got := MakerFromVIN(c.vin); got != c.want {
			t.Errorf("MakerFromVIN(%q) = %q, want %q", c.vin, got, c.want)
		}
	}
}
