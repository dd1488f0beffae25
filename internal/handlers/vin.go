package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/fleetyard/fleetyard/internal/errs"
	"github.com/fleetyard/fleetyard/internal/vinscan"
)

// VINHandler proxies label photos to the external text-detection service and
// returns the VIN (and derived maker) found in the image. It mirrors the
// serverless deployment of the same endpoint, so it handles OPTIONS and
// method checks itself rather than relying on router configuration.
type VINHandler struct {
	Client *vinscan.Client
}

func (h *VINHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		ImageData string `json:"imageData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if input.ImageData == "" {
		JSONError(w, "imageData is required", http.StatusBadRequest)
		return
	}
	image, err := base64.StdEncoding.DecodeString(input.ImageData)
	if err != nil {
		JSONError(w, "imageData is not valid base64", http.StatusBadRequest)
		return
	}

	vin, err := h.Client.ExtractVIN(r.Context(), image)
	if err != nil {
		if errs.IsNotFound(err) {
			JSONError(w, "no vin found in image", http.StatusNotFound)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"vin":   vin,
		"maker": vinscan.MakerFromVIN(vin),
	})
}
