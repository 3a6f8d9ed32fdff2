package scheduler

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInterrupted   = errors.New("run interrupted")
)

// Settings fixes the scheduling parameters for one run.
type Settings struct {
	Workers    int
	Timeout    time.Duration
	Retries    int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// Validate returns an ErrInvalidConfig error describing every invalid field.
func (s Settings) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Workers, validation.Required, validation.Min(1)),
		validation.Field(&s.Timeout, validation.Required, validation.Min(time.Nanosecond)),
		validation.Field(&s.Retries, validation.Min(0)),
		validation.Field(&s.Backoff, validation.Min(time.Duration(0))),
		validation.Field(&s.MaxBackoff, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}
