package domain

import (
	"context"
	"encoding/json"
)

// Prediction is the relayed response from the hosted inference service.
// Status and Body are returned to the caller unmodified.
type Prediction struct {
	Status int
	Body   json.RawMessage
}

// PredictionClient forwards a molecule/protein pair to the external
// inference endpoint. Transport-level failures are reported as ErrUpstream;
// upstream HTTP errors are not an error here, they are mirrored.
type PredictionClient interface {
	Predict(ctx context.Context, smiles, proteinSequence string) (*Prediction, error)
}
