// Package pricing quotes the time credits an exchange costs.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// noPlacesLimit accepts inputs with any number of decimal places.
const noPlacesLimit = -1

var (
	defaultMinDuration = decimal.RequireFromString("0.5")
	defaultMinRate     = decimal.NewFromInt(1)
)

var (
	// ErrDurationTooShort is returned when the requested duration is below the minimum.
	ErrDurationTooShort = errors.New("duration below minimum")
	// ErrDurationTooLong is returned when the requested duration is above the maximum.
	ErrDurationTooLong = errors.New("duration above maximum")
	// ErrRateTooLow is returned when the hourly rate is below the minimum.
	ErrRateTooLow = errors.New("hourly rate below minimum")
	// ErrTooPrecise is returned when a rate or duration has more decimal
	// places than the pricer accepts.
	ErrTooPrecise = errors.New("too many decimal places")
)

// Option applies a configuration option to the RatePricer.
type Option func(*RatePricer)

// WithDurationRange sets the accepted duration range in hours. A zero
// maxDuration leaves durations unbounded above.
func WithDurationRange(minDuration, maxDuration decimal.Decimal) Option {
	return func(p *RatePricer) {
		if !minDuration.IsPositive() {
			return
		}
		if !maxDuration.IsZero() && maxDuration.LessThan(minDuration) {
			return
		}
		p.minDuration = minDuration
		p.maxDuration = maxDuration
	}
}

// WithMaxDuration caps the duration of one exchange. Zero removes the cap.
func WithMaxDuration(maxDuration decimal.Decimal) Option {
	return func(p *RatePricer) {
		if maxDuration.IsZero() || maxDuration.GreaterThanOrEqual(p.minDuration) {
			p.maxDuration = maxDuration
		}
	}
}

// WithMinRate sets the lowest hourly rate a skill may carry.
func WithMinRate(rate decimal.Decimal) Option {
	return func(p *RatePricer) {
		if rate.IsPositive() {
			p.minRate = rate
		}
	}
}

// WithMaxPlaces limits the decimal places accepted in rates and durations.
// Quotes are never rounded; inputs beyond the limit are rejected.
func WithMaxPlaces(places int32) Option {
	return func(p *RatePricer) {
		if places >= 0 {
			p.maxPlaces = places
		}
	}
}

// Quote is the frozen price of an exchange.
type Quote struct {
	Duration    decimal.Decimal
	HourlyRate  decimal.Decimal
	TimeCredits decimal.Decimal
}

// Pricer computes the cost of an exchange.
type Pricer interface {
	// Quote prices duration hours of a skill charged at hourlyRate.
	Quote(hourlyRate, duration decimal.Decimal) (Quote, error)
	// CheckRate validates a skill's hourly rate.
	CheckRate(hourlyRate decimal.Decimal) error
}

// RatePricer charges exactly duration × hourly rate.
type RatePricer struct {
	minDuration decimal.Decimal
	maxDuration decimal.Decimal // zero = unbounded
	minRate     decimal.Decimal
	maxPlaces   int32
}

// NewRatePricer creates a pricer with configuration options.
func NewRatePricer(opts ...Option) *RatePricer {
	p := &RatePricer{
		minDuration: defaultMinDuration,
		minRate:     defaultMinRate,
		maxPlaces:   noPlacesLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Quote implements Pricer.
func (p *RatePricer) Quote(hourlyRate, duration decimal.Decimal) (Quote, error) {
	if err := p.CheckRate(hourlyRate); err != nil {
		return Quote{}, err
	}
	if duration.LessThan(p.minDuration) {
		return Quote{}, fmt.Errorf("%w: %s < %s", ErrDurationTooShort, duration, p.minDuration)
	}
	if !p.maxDuration.IsZero() && duration.GreaterThan(p.maxDuration) {
		return Quote{}, fmt.Errorf("%w: %s > %s", ErrDurationTooLong, duration, p.maxDuration)
	}
	if err := p.checkPlaces("duration", duration); err != nil {
		return Quote{}, err
	}
	return Quote{
		Duration:    duration,
		HourlyRate:  hourlyRate,
		TimeCredits: hourlyRate.Mul(duration),
	}, nil
}

// CheckRate implements Pricer.
func (p *RatePricer) CheckRate(hourlyRate decimal.Decimal) error {
	if hourlyRate.LessThan(p.minRate) {
		return fmt.Errorf("%w: %s < %s", ErrRateTooLow, hourlyRate, p.minRate)
	}
	return p.checkPlaces("hourly rate", hourlyRate)
}

func (p *RatePricer) checkPlaces(field string, v decimal.Decimal) error {
	if p.maxPlaces == noPlacesLimit {
		return nil
	}
	if !v.Equal(v.Truncate(p.maxPlaces)) {
		return fmt.Errorf("%w: %s %s has more than %d", ErrTooPrecise, field, v, p.maxPlaces)
	}
	return nil
}
