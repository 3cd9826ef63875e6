package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/toilettracker/internal/client/client"
	"github.com/dmitrijs2005/toilettracker/internal/client/geo"
	"github.com/dmitrijs2005/toilettracker/internal/client/services"
)

// LogLocation logs a visit at the current device position.
func (a *App) LogLocation(ctx context.Context) error {
	fmt.Fprintln(a.out, "Locating...")

	if _, err := a.entryService.LogCurrentLocation(ctx); err != nil {
		switch {
		case errors.Is(err, geo.ErrUnsupported):
			fmt.Fprintln(a.out, "Geolocation is not supported")
		case errors.Is(err, geo.ErrDenied), errors.Is(err, geo.ErrTimeout):
			fmt.Fprintln(a.out, "Location access denied or timed out")
		default:
			fmt.Fprintln(a.out, client.MessageOf(err, "Already logged here?"))
		}
		return err
	}

	fmt.Fprintln(a.out, "🚽 Toilet logged successfully!")
	return a.Progress(ctx)
}

// AddManual prompts for the manual form and logs it.
func (a *App) AddManual(ctx context.Context) error {
	var form services.ManualEntry
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Name (e.g. Starbucks Downtown)", &form.Name},
		{"Latitude", &form.Latitude},
		{"Longitude", &form.Longitude},
		{"Address (optional)", &form.Address},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if _, err := a.entryService.LogManual(ctx, form); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			fmt.Fprintln(a.out, "Name, latitude, and longitude are required!")
		case errors.Is(err, services.ErrInvalidCoordinates):
			fmt.Fprintln(a.out, "Latitude and longitude must be numbers")
		default:
			fmt.Fprintln(a.out, client.MessageOf(err, "Failed"))
		}
		return err
	}

	fmt.Fprintln(a.out, "🚽 Manual toilet logged!")
	return a.Progress(ctx)
}

// Golden toggles the Golden Bowl mark of the entry with id args[0].
func (a *App) Golden(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: golden <id>")
		return nil
	}

	msg, err := a.entryService.ToggleGolden(ctx, args[0])
	if err != nil {
		fmt.Fprintln(a.out, client.MessageOf(err, "Failed"))
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}
