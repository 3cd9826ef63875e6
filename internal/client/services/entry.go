package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/geo"
	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/dmitrijs2005/toilettracker/internal/logging"
)

// DefaultGeoTimeout bounds a device position lookup.
const DefaultGeoTimeout = 15 * time.Second

var (
	ErrMissingFields      = errors.New("name, latitude, and longitude are required")
	ErrInvalidCoordinates = errors.New("latitude and longitude must be numbers")
)

// ManualEntry is the raw manual form as typed by the user.
type ManualEntry struct {
	Name      string
	Latitude  string
	Longitude string
	Address   string
}

// Validate trims the fields and converts them to a request body. An empty
// address becomes models.ManualEntryAddress.
func (m ManualEntry) Validate() (models.NewEntry, error) {
	name := strings.TrimSpace(m.Name)
	lat := strings.TrimSpace(m.Latitude)
	lon := strings.TrimSpace(m.Longitude)
	if name == "" || lat == "" || lon == "" {
		return models.NewEntry{}, ErrMissingFields
	}

	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return models.NewEntry{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinates, lat)
	}
	longitude, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return models.NewEntry{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinates, lon)
	}

	address := strings.TrimSpace(m.Address)
	if address == "" {
		address = models.ManualEntryAddress
	}
	return models.NewEntry{Name: name, Latitude: latitude, Longitude: longitude, Address: address}, nil
}

// EntryService logs visits. Every successful write is followed by exactly
// one refresh; a failed write triggers none.
type EntryService interface {
	LogCurrentLocation(ctx context.Context) (*models.Entry, error)
	LogManual(ctx context.Context, form ManualEntry) (*models.Entry, error)
	ToggleGolden(ctx context.Context, id string) (string, error)
}

type entryService struct {
	client     client.Client
	session    *Session
	refresher  Refresher
	locator    geo.Locator
	geoTimeout time.Duration
	log        logging.Logger
}

func NewEntryService(c client.Client, session *Session, refresher Refresher, locator geo.Locator, geoTimeout time.Duration, log logging.Logger) EntryService {
	if geoTimeout <= 0 {
		geoTimeout = DefaultGeoTimeout
	}
	return &entryService{
		client:     c,
		session:    session,
		refresher:  refresher,
		locator:    locator,
		geoTimeout: geoTimeout,
		log:        log,
	}
}

func (s *entryService) LogCurrentLocation(ctx context.Context) (*models.Entry, error) {
	if !s.session.LoggedIn() {
		return nil, client.ErrNotLoggedIn
	}
	if s.locator == nil {
		return nil, geo.ErrUnsupported
	}

	state := s.session.State()
	state.SetLoading(true)
	defer state.SetLoading(false)

	lctx, cancel := context.WithTimeout(ctx, s.geoTimeout)
	pos, err := s.locator.Locate(lctx)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = geo.ErrTimeout
		}
		return nil, fmt.Errorf("locate: %w", err)
	}
	state.SetCenter(pos)

	return s.create(ctx, models.NewEntry{
		Name:      models.GPSEntryName,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Address:   models.GPSEntryAddress,
	})
}

func (s *entryService) LogManual(ctx context.Context, form ManualEntry) (*models.Entry, error) {
	if !s.session.LoggedIn() {
		return nil, client.ErrNotLoggedIn
	}
	in, err := form.Validate()
	if err != nil {
		return nil, err
	}
	return s.create(ctx, in)
}

func (s *entryService) create(ctx context.Context, in models.NewEntry) (*models.Entry, error) {
	created, err := s.client.CreateEntry(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	s.log.Info(ctx, "entry logged", "id", created.ID, "name", created.Name)
	s.refresh(ctx)
	return created, nil
}

func (s *entryService) ToggleGolden(ctx context.Context, id string) (string, error) {
	if !s.session.LoggedIn() {
		return "", client.ErrNotLoggedIn
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("entry id is required")
	}

	msg, err := s.client.ToggleGolden(ctx, id)
	if err != nil {
		return "", fmt.Errorf("toggle golden bowl: %w", err)
	}
	s.refresh(ctx)
	return msg, nil
}

func (s *entryService) refresh(ctx context.Context) {
	if err := s.refresher.Refresh(ctx); err != nil {
		s.log.Warn(ctx, "refresh after write failed", "error", err)
	}
}
