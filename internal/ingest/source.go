package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ianwelles/NihonGo-sub000/internal/db"
	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

// Source produces a full trip snapshot. Sources resolve exactly once per
// call: a complete snapshot or an error, never partial data.
type Source interface {
	Load(ctx context.Context) (*trip.Snapshot, error)
}

// PostgresSource reads the trip tables filled by the spreadsheet importer.
type PostgresSource struct {
	db db.Querier
}

func NewPostgresSource(q db.Querier) *PostgresSource {
	return &PostgresSource{db: q}
}

func (s *PostgresSource) Load(ctx context.Context) (*trip.Snapshot, error) {
	snap := &trip.Snapshot{
		Places: map[string]trip.Place{},
		Theme: trip.Theme{
			CityColors:   map[string]string{},
			MarkerColors: map[string]string{},
		},
	}

	if err := s.loadPlaces(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadItinerary(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadTheme(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadTips(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadMeta(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresSource) loadPlaces(ctx context.Context, snap *trip.Snapshot) error {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, category, city, lat, lng,
		       COALESCE(description,''), COALESCE(url,''), COALESCE(tags,'{}'),
		       COALESCE(hotel_address,''), COALESCE(hotel_directions_url,''),
		       COALESCE(hotel_neighborhood,''), COALESCE(hotel_tags,'{}')
		FROM places
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p trip.Place
		var rawCategory, hotelAddress, hotelDirections, hotelNeighborhood string
		var hotelTags []string
		if err := rows.Scan(&p.ID, &p.Name, &rawCategory, &p.City, &p.Coordinate.Lat, &p.Coordinate.Lng,
			&p.Description, &p.URL, &p.Tags,
			&hotelAddress, &hotelDirections, &hotelNeighborhood, &hotelTags); err != nil {
			return err
		}
		category, ok := trip.ParseCategory(rawCategory)
		if !ok {
			return fmt.Errorf("place %s: unknown category %q", p.ID, rawCategory)
		}
		p.Category = category
		if hotelAddress != "" || hotelDirections != "" || hotelNeighborhood != "" || len(hotelTags) > 0 {
			p.Hotel = &trip.HotelInfo{
				Address:       hotelAddress,
				DirectionsURL: hotelDirections,
				Neighborhood:  hotelNeighborhood,
				Tags:          hotelTags,
			}
		}
		snap.Places[p.ID] = p
	}
	return rows.Err()
}

func (s *PostgresSource) loadItinerary(ctx context.Context, snap *trip.Snapshot) error {
	rows, err := s.db.Query(ctx, `
		SELECT day_number, city, COALESCE(date,''), COALESCE(title,''), COALESCE(hotel_ids,'{}')
		FROM itinerary_days
		ORDER BY day_number, city
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var d trip.DayItinerary
		if err := rows.Scan(&d.DayNumber, &d.City, &d.Date, &d.Title, &d.HotelIDs); err != nil {
			return err
		}
		index[d.ID()] = len(snap.Itinerary)
		snap.Itinerary = append(snap.Itinerary, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	activityRows, err := s.db.Query(ctx, `
		SELECT day_number, city, place_id,
		       COALESCE(time_label,''), COALESCE(label,''), COALESCE(description,''),
		       COALESCE(url,''), COALESCE(tip,''), COALESCE(icon,'')
		FROM day_activities
		ORDER BY day_number, city, position
	`)
	if err != nil {
		return err
	}
	defer activityRows.Close()

	for activityRows.Next() {
		var dayNumber int
		var city string
		var a trip.Activity
		if err := activityRows.Scan(&dayNumber, &city, &a.PlaceID,
			&a.TimeLabel, &a.Label, &a.Description, &a.URL, &a.Tip, &a.Icon); err != nil {
			return err
		}
		key := trip.DayItinerary{DayNumber: dayNumber, City: city}.ID()
		i, ok := index[key]
		if !ok {
			return fmt.Errorf("activity %s: no itinerary day %s", a.PlaceID, key)
		}
		snap.Itinerary[i].Activities = append(snap.Itinerary[i].Activities, a)
	}
	return activityRows.Err()
}

func (s *PostgresSource) loadTheme(ctx context.Context, snap *trip.Snapshot) error {
	rows, err := s.db.Query(ctx, `SELECT kind, key, color FROM theme_colors`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, key, color string
		if err := rows.Scan(&kind, &key, &color); err != nil {
			return err
		}
		switch kind {
		case "city":
			snap.Theme.CityColors[key] = color
		case "marker":
			snap.Theme.MarkerColors[key] = color
		}
	}
	return rows.Err()
}

func (s *PostgresSource) loadTips(ctx context.Context, snap *trip.Snapshot) error {
	rows, err := s.db.Query(ctx, `SELECT category, tip FROM trip_tips ORDER BY category, position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var category, tip string
		if err := rows.Scan(&category, &tip); err != nil {
			return err
		}
		i, ok := index[category]
		if !ok {
			i = len(snap.Tips)
			index[category] = i
			snap.Tips = append(snap.Tips, trip.TipCategory{Name: category})
		}
		snap.Tips[i].Tips = append(snap.Tips[i].Tips, tip)
	}
	return rows.Err()
}

func (s *PostgresSource) loadMeta(ctx context.Context, snap *trip.Snapshot) error {
	row := s.db.QueryRow(ctx, `SELECT start_date, end_date FROM trip_meta LIMIT 1`)
	return row.Scan(&snap.StartDate, &snap.EndDate)
}

// HTTPSource fetches the snapshot JSON in one shot.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{url: url, client: &http.Client{Timeout: 30 * time.Second}}
}

func (s *HTTPSource) Load(ctx context.Context) (*trip.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot fetch: unexpected status %d", resp.StatusCode)
	}

	var snap trip.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
