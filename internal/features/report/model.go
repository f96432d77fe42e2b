package report

import (
	"go-contractor/internal/datastore"
	"go-contractor/internal/engine"
)

// RunResponse is what the builder screen renders: shaped rows for display,
// raw rows for client-side charts.
type RunResponse struct {
	Rows     []map[string]string    `json:"rows"`
	RawRows  []datastore.Row        `json:"raw_rows"`
	RowCount int                    `json:"row_count"`
	Fields   []engine.FieldMetadata `json:"fields"`
	Dropped  []string               `json:"dropped"`

	Table engine.Table `json:"-"`
}

// SourceInfo describes a data source for the builder pickers.
type SourceInfo struct {
	Name   engine.DataSource      `json:"name"`
	Label  string                 `json:"label"`
	Fields []engine.FieldMetadata `json:"fields"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
	Rows        int
}

// LiveRequest is one inbound message on the live socket.
type LiveRequest struct {
	Generation uint64                       `json:"generation"`
	Config     engine.ConfigurationDocument `json:"config"`
}

// LiveResponse carries either a result or an error for a client generation.
type LiveResponse struct {
	Generation uint64       `json:"generation"`
	Result     *RunResponse `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
}
