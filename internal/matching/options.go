package matching

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultCosineWeight  = 0.7
	DefaultOverlapWeight = 0.3
)

// ErrConfiguration marks invalid scoring options. Invalid values are rejected,
// never clamped.
var ErrConfiguration = errors.New("invalid scoring configuration")

// Options tunes how the two similarity signals are blended.
// The weights need not sum to one.
type Options struct {
	CosineWeight  float64 `mapstructure:"cosine-weight" json:"cosine_weight" yaml:"cosine_weight"`
	OverlapWeight float64 `mapstructure:"overlap-weight" json:"overlap_weight" yaml:"overlap_weight"`
	MaxVocabulary int     `mapstructure:"max-vocabulary" json:"max_vocabulary" yaml:"max_vocabulary"`
}

// Option mutates Options.
type Option func(*Options)

func WithCosineWeight(w float64) Option {
	return func(o *Options) { o.CosineWeight = w }
}

func WithOverlapWeight(w float64) Option {
	return func(o *Options) { o.OverlapWeight = w }
}

func WithMaxVocabulary(n int) Option {
	return func(o *Options) { o.MaxVocabulary = n }
}

// DefaultOptions returns the 0.7/0.3 blend with a 4000 term vocabulary.
func DefaultOptions() Options {
	return Options{
		CosineWeight:  DefaultCosineWeight,
		OverlapWeight: DefaultOverlapWeight,
		MaxVocabulary: DefaultMaxVocabulary,
	}
}

// Validate reports the first invalid field, wrapped with ErrConfiguration.
func (o Options) Validate() error {
	if err := validateWeight("cosine weight", o.CosineWeight); err != nil {
		return err
	}
	if err := validateWeight("overlap weight", o.OverlapWeight); err != nil {
		return err
	}
	if o.MaxVocabulary <= 0 {
		return configError("max vocabulary must be positive, got %d", o.MaxVocabulary)
	}
	return nil
}

func validateWeight(name string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return configError("%s must be a finite number, got %v", name, w)
	}
	if w < 0 {
		return configError("%s must not be negative, got %v", name, w)
	}
	return nil
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
