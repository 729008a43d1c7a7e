package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/rkode/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

// ExportJSON writes the run metadata together with its samples.
func ExportJSON(w io.Writer, meta RunMetadata, traj dynamo.Trajectory) error {
	data := ExportData{
		RunMetadata: meta,
		Times:       traj.T,
		Values:      traj.Y,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes a "t,y" header and one row per sample at full precision.
func WriteCSV(w io.Writer, traj dynamo.Trajectory) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"t", "y"}); err != nil {
		return err
	}
	for i := range traj.T {
		row := []string{
			strconv.FormatFloat(traj.T[i], 'g', -1, 64),
			strconv.FormatFloat(traj.Y[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
