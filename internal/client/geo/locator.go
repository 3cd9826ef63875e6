// Package geo resolves the position of the device running the client.
//
// A terminal has no browser geolocation API, so the position comes from one
// of the Locator implementations: an IP geolocation lookup, a position fixed
// in the configuration, or none at all.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

var (
	ErrUnsupported = errors.New("geolocation is not supported")
	ErrDenied      = errors.New("location access denied")
	ErrTimeout     = errors.New("location request timed out")
)

// Locator returns the current device position. Implementations must honor
// ctx cancellation; a deadline exceeded while locating is reported as
// ErrTimeout.
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// Kinds accepted by New.
const (
	KindIP    = "ip"
	KindFixed = "fixed"
	KindNone  = "none"
)

// Settings selects and parametrizes a Locator.
type Settings struct {
	Kind      string
	URL       string
	Latitude  float64
	Longitude float64
}

// New builds the Locator described by s. An empty kind means KindIP.
func New(s Settings) (Locator, error) {
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case "", KindIP:
		return NewIPLocator(s.URL), nil
	case KindFixed:
		return NewFixedLocator(models.Coordinates{Latitude: s.Latitude, Longitude: s.Longitude})
	case KindNone:
		return Unsupported{}, nil
	default:
		return nil, fmt.Errorf("unknown locator %q", s.Kind)
	}
}

// ValidCoordinates reports whether c lies within the WGS84 ranges.
func ValidCoordinates(c models.Coordinates) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// FixedLocator always reports the same position.
type FixedLocator struct {
	pos models.Coordinates
}

func NewFixedLocator(pos models.Coordinates) (*FixedLocator, error) {
	if !ValidCoordinates(pos) {
		return nil, fmt.Errorf("fixed position %v out of range", pos)
	}
	return &FixedLocator{pos: pos}, nil
}

func (l *FixedLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, contextError(err)
	}
	return l.pos, nil
}

// Unsupported is the Locator of a device without any position source.
type Unsupported struct{}

func (Unsupported) Locate(context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, ErrUnsupported
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
