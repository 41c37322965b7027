package persistence

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

// The stored form is base64(JSON envelope). It is a reversible encoding, not
// encryption: anyone with access to the store can read and rewrite it. The
// envelope version only guards against loading data written in another shape.
const codecVersion = 1

var ErrCorrupted = errors.New("stored cart is corrupted")

type envelope struct {
	Version int               `json:"v"`
	State   *domain.CartState `json:"state"`
}

func Encode(state domain.CartState) (string, error) {
	data, err := json.Marshal(envelope{Version: codecVersion, State: &state})
	if err != nil {
		return "", fmt.Errorf("marshal cart failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func Decode(raw string) (domain.CartState, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return domain.CartState{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.CartState{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if env.Version != codecVersion {
		return domain.CartState{}, fmt.Errorf("%w: unknown version %d", ErrCorrupted, env.Version)
	}
	if env.State == nil {
		return domain.CartState{}, fmt.Errorf("%w: missing state", ErrCorrupted)
	}
	if err := validateShape(*env.State); err != nil {
		return domain.CartState{}, err
	}

	state := *env.State
	if state.Lines == nil {
		state.Lines = []domain.CartLine{}
	}
	return state, nil
}

func validateShape(state domain.CartState) error {
	if state.LastModified.IsZero() {
		return fmt.Errorf("%w: missing last_modified", ErrCorrupted)
	}

	seen := make(map[string]struct{}, len(state.Lines))
	for _, line := range state.Lines {
		if line.ProductID == "" {
			return fmt.Errorf("%w: line without product id", ErrCorrupted)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: product %s has quantity %d", ErrCorrupted, line.ProductID, line.Quantity)
		}
		if line.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: product %s has negative price", ErrCorrupted, line.ProductID)
		}
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("%w: duplicate product %s", ErrCorrupted, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}
