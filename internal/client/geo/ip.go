package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
)

// DefaultIPURL is the ip-api.com endpoint answering with the caller's position.
const DefaultIPURL = "http://ip-api.com/json/"

// IPLocator estimates the position from the public IP address.
type IPLocator struct {
	url  string
	http *http.Client
}

func NewIPLocator(url string) *IPLocator {
	if url == "" {
		url = DefaultIPURL
	}
	return &IPLocator{url: url, http: &http.Client{}}
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (l *IPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return models.Coordinates{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Coordinates{}, contextError(ctxErr)
		}
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrDenied, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("%w: lookup returned %s", ErrDenied, resp.Status)
	}

	var body ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Coordinates{}, contextError(ctxErr)
		}
		return models.Coordinates{}, fmt.Errorf("decode lookup response: %w", err)
	}
	if body.Status != "" && body.Status != "success" {
		if body.Message == "" {
			body.Message = body.Status
		}
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrDenied, body.Message)
	}

	pos := models.Coordinates{Latitude: body.Lat, Longitude: body.Lon}
	if !ValidCoordinates(pos) {
		return models.Coordinates{}, errors.Join(ErrDenied, fmt.Errorf("position %v out of range", pos))
	}
	return pos, nil
}
