package handler

import (
	"net/http"
	"strings"

	"github.com/abdoir/affinity-server/internal/domain"
)

// PredictHandler relays binding-affinity requests to the hosted inference
// service and mirrors its response.
type PredictHandler struct {
	client  domain.PredictionClient
	verbose bool
}

func NewPredictHandler(client domain.PredictionClient, verbose bool) *PredictHandler {
	return &PredictHandler{client: client, verbose: verbose}
}

type predictRequest struct {
	Smiles          string `json:"smiles"`
	ProteinSequence string `json:"protein_sequence"`
}

// HandlePredict validates the molecule/protein pair and forwards it. The
// upstream status code and body pass through unmodified, success or not.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Smiles) == "" || strings.TrimSpace(req.ProteinSequence) == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: smiles and protein_sequence")
		return
	}

	prediction, err := h.client.Predict(r.Context(), req.Smiles, req.ProteinSequence)
	if err != nil {
		writeServiceError(w, "predict", err, h.verbose)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(prediction.Status)
	w.Write(prediction.Body)
}
