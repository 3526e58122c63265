package pagerank

import (
	"fmt"

	apperrors "github.com/hyperjump/pagesearch/internal/errors"
)

// Params holds the iteration settings.
type Params struct {
	Damping       float64 `yaml:"damping" json:"damping"`               // default: 0.85
	Threshold     float64 `yaml:"threshold" json:"threshold"`           // default: 0.00001
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"` // default: 1000
}

// DefaultParams returns the settings used by the build command when none are configured.
func DefaultParams() Params {
	return Params{
		Damping:       0.85,
		Threshold:     0.00001,
		MaxIterations: 1000,
	}
}

// Validate rejects settings that make the iteration meaningless.
func (p Params) Validate() error {
	if p.Damping < 0 || p.Damping > 1 {
		return fmt.Errorf("%w: damping %v outside [0,1]", apperrors.ErrInvalidParams, p.Damping)
	}
	if p.Threshold < 0 {
		return fmt.Errorf("%w: negative threshold %v", apperrors.ErrInvalidParams, p.Threshold)
	}
	if p.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d < 1", apperrors.ErrInvalidParams, p.MaxIterations)
	}
	return nil
}
