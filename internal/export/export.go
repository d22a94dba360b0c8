package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

var itineraryHeader = []string{
	"day", "city", "date", "time", "name", "category", "lat", "lng", "tip", "url",
}

// WriteItineraryCSV renders the full itinerary, one row per scheduled
// activity, with day hotels listed before the day's activities. Dangling
// place references still get a row so gaps are visible in the sheet.
func WriteItineraryCSV(w io.Writer, snap *trip.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(itineraryHeader); err != nil {
		return err
	}

	for _, d := range snap.Itinerary {
		for _, id := range d.HotelIDs {
			hotel, ok := snap.Places[id]
			if !ok {
				continue
			}
			if err := cw.Write(placeRow(d, "", hotel, "", hotel.URL)); err != nil {
				return err
			}
		}

		resolved := snap.ResolveDay(d)
		for _, entry := range resolved.Entries {
			if entry.Place == nil {
				row := []string{
					fmt.Sprint(d.DayNumber), d.City, d.Date, entry.TimeLabel,
					entry.PlaceID, "", "", "", entry.Error, "",
				}
				if err := cw.Write(row); err != nil {
					return err
				}
				continue
			}
			if err := cw.Write(activityRow(d, entry)); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func placeRow(d trip.DayItinerary, timeLabel string, p trip.Place, tip, url string) []string {
	return []string{
		fmt.Sprint(d.DayNumber), d.City, d.Date, timeLabel,
		p.Name, string(p.Category),
		fmt.Sprintf("%.6f", p.Coordinate.Lat), fmt.Sprintf("%.6f", p.Coordinate.Lng),
		tip, url,
	}
}

func activityRow(d trip.DayItinerary, entry trip.ResolvedActivity) []string {
	row := placeRow(d, entry.TimeLabel, *entry.Place, entry.Tip, entry.URL)
	row[4] = entry.Label
	return row
}
