package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ukydev/fleet-insights/internal/models"
)

// ErrNotFound is returned when the upstream answers 404.
var ErrNotFound = errors.New("upstream resource not found")

// StatusError is returned for any other non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Path, e.StatusCode)
}

// TimeLayout is the date-time format the trips endpoint expects.
const TimeLayout = "2006-01-02T15:04:05"

// Client talks to the GPS tracking API with Basic auth.
type Client struct {
	BaseURL     string
	Username    string
	Password    string
	HTTP        *http.Client
	Concurrency int
}

// NewClient creates a client with a bounded request timeout.
func NewClient(baseURL, username, password string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Username:    username,
		Password:    password,
		HTTP:        &http.Client{Timeout: timeout},
		Concurrency: 8,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.Username, c.Password)
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Path: path, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Groups lists the fleet groups of the account.
func (c *Client) Groups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := c.get(ctx, "/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Vehicles lists the vehicles of a group.
func (c *Client) Vehicles(ctx context.Context, groupCode string) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := c.get(ctx, "/vehicles/group/"+url.PathEscape(groupCode), nil, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Vehicle fetches a single vehicle.
func (c *Client) Vehicle(ctx context.Context, code string) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := c.get(ctx, "/vehicle/"+url.PathEscape(code), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Trips lists the trips of one vehicle between from and to.
func (c *Client) Trips(ctx context.Context, code string, from, to time.Time) ([]models.Trip, error) {
	q := url.Values{}
	q.Set("from", from.Format(TimeLayout))
	q.Set("to", to.Format(TimeLayout))
	var trips []models.Trip
	if err := c.get(ctx, "/vehicle/"+url.PathEscape(code)+"/trips", q, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// PositionHistory returns the recorded positions of the given vehicles
// between from and to, one entry per vehicle. No codes means no request.
func (c *Client) PositionHistory(ctx context.Context, codes []string, from, to time.Time) ([]models.VehiclePositions, error) {
	escaped := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			escaped = append(escaped, url.PathEscape(code))
		}
	}
	if len(escaped) == 0 {
		return []models.VehiclePositions{}, nil
	}

	q := url.Values{}
	q.Set("from", from.Format(TimeLayout))
	q.Set("to", to.Format(TimeLayout))
	var history []models.VehiclePositions
	if err := c.get(ctx, "/vehicles/history/"+strings.Join(escaped, ","), q, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// FleetTrips fetches the trips of every vehicle in parallel and annotates
// them with their vehicle. The result keeps vehicle order. A vehicle whose
// fetch fails is logged and contributes no trips; only context
// cancellation fails the whole call.
func (c *Client) FleetTrips(ctx context.Context, vehicles []models.Vehicle, from, to time.Time) ([]models.TripWithVehicle, error) {
	perVehicle := make([][]models.TripWithVehicle, len(vehicles))

	g, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = 8
	}
	g.SetLimit(limit)

	for i, v := range vehicles {
		g.Go(func() error {
			trips, err := c.Trips(gctx, v.Code, from, to)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WithError(err).WithField("vehicle_code", v.Code).Warn("Failed to fetch trips")
				return nil
			}
			perVehicle[i] = models.WithVehicle(v, trips)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch fleet trips: %w", err)
	}

	var out []models.TripWithVehicle
	for _, trips := range perVehicle {
		out = append(out, trips...)
	}
	return out, nil
}
