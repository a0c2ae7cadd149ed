// Package export writes generated encounters to offline artifact files
// (JSON documents and waypoint CSVs) for downstream inspection.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/airside-data/nearmiss.report/internal/trajectory"
)

// Document is one generated encounter with the metadata needed to reproduce
// it.
type Document struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Model       string         `json:"model"`
	Seed        uint64         `json:"seed"`
	Flights     []FlightRecord `json:"flights"`
}

// FlightRecord is the serialized form of one flight. Waypoints are rows of
// (t, x, y, z).
type FlightRecord struct {
	Index         int          `json:"index"`
	OpIntentLower [3]float64   `json:"op_intent_lower"`
	OpIntentUpper [3]float64   `json:"op_intent_upper"`
	Size          [3]float64   `json:"size"`
	Waypoints     [][4]float64 `json:"waypoints"`
}

// NewDocument assembles an encounter document: a fresh ID, the generation
// timestamp and the flattened flights.
func NewDocument(model string, seed uint64, flights []trajectory.Flight) Document {
	doc := Document{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Model:       model,
		Seed:        seed,
		Flights:     make([]FlightRecord, 0, len(flights)),
	}
	for i, flight := range flights {
		rec := FlightRecord{
			Index:         i + 1,
			OpIntentLower: [3]float64{flight.OpIntent.Lower.X, flight.OpIntent.Lower.Y, flight.OpIntent.Lower.Z},
			OpIntentUpper: [3]float64{flight.OpIntent.Upper.X, flight.OpIntent.Upper.Y, flight.OpIntent.Upper.Z},
			Size:          [3]float64{flight.Size.X, flight.Size.Y, flight.Size.Z},
		}
		for _, wp := range flight.Path.Waypoints() {
			rec.Waypoints = append(rec.Waypoints, [4]float64{wp.T, wp.X, wp.Y, wp.Z})
		}
		doc.Flights = append(doc.Flights, rec)
	}
	return doc
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal encounter document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes one row per waypoint: flight index then t, x, y, z.
func WriteCSV(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"flight", "t", "x", "y", "z"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, flight := range doc.Flights {
		for _, wp := range flight.Waypoints {
			row := []string{
				strconv.Itoa(flight.Index),
				formatFloat(wp[0]),
				formatFloat(wp[1]),
				formatFloat(wp[2]),
				formatFloat(wp[3]),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
