package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go-contractor/internal/engine"

	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Recorder receives export and live-run outcomes.
type Recorder interface {
	ObserveExport(format string, ok bool)
	ObserveStale()
}

type nopRecorder struct{}

func (nopRecorder) ObserveExport(string, bool) {}
func (nopRecorder) ObserveStale()              {}

type ReportService interface {
	Sources() []SourceInfo
	Operators(ds engine.DataSource, field string, ft engine.FieldType) ([]engine.Operator, error)
	Configure(doc engine.ConfigurationDocument) (engine.Configuration, error)
	Run(ctx context.Context, cfg engine.Configuration) (*RunResponse, error)
	Export(ctx context.Context, cfg engine.Configuration, name, format string) (*ExportFile, error)
}

type ReportServiceImpl struct {
	Catalog  *engine.Catalog
	Executor engine.Executor
	Shaper   *engine.Shaper
	Recorder Recorder
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewReportService(catalog *engine.Catalog, executor engine.Executor, shaper *engine.Shaper, recorder Recorder, logger *zap.Logger) ReportService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportServiceImpl{
		Catalog:  catalog,
		Executor: executor,
		Shaper:   shaper,
		Recorder: recorder,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (s *ReportServiceImpl) Sources() []SourceInfo {
	defs := s.Catalog.Sources()
	out := make([]SourceInfo, len(defs))
	for i, def := range defs {
		out[i] = SourceInfo{
			Name:   def.Name,
			Label:  def.Label,
			Fields: s.Catalog.FieldsFor(def.Name),
		}
	}
	return out
}

// Operators lists the legal operators for an explicit type or for a field of ds.
func (s *ReportServiceImpl) Operators(ds engine.DataSource, field string, ft engine.FieldType) ([]engine.Operator, error) {
	if _, ok := s.Catalog.Source(ds); !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownDataSource, ds)
	}
	if ft == "" {
		f, ok := s.Catalog.Field(ds, field)
		if !ok {
			return nil, fmt.Errorf("%w: %q", engine.ErrUnknownField, field)
		}
		ft = f.Type
	}
	return engine.OperatorsFor(ft), nil
}

func (s *ReportServiceImpl) Configure(doc engine.ConfigurationDocument) (engine.Configuration, error) {
	cfg := doc.Configuration(s.Catalog)
	if err := cfg.Check(s.Catalog); err != nil {
		return engine.Configuration{}, err
	}
	return cfg, nil
}

func (s *ReportServiceImpl) Run(ctx context.Context, cfg engine.Configuration) (*RunResponse, error) {
	result, err := s.Executor.Execute(ctx, cfg)
	if err != nil {
		return nil, err
	}

	table := s.Shaper.Shape(result.Rows, result.Fields)
	dropped := result.Dropped
	if dropped == nil {
		dropped = []string{}
	}
	return &RunResponse{
		Rows:     table.Records(),
		RawRows:  result.Rows,
		RowCount: result.RowCount,
		Fields:   result.Fields,
		Dropped:  dropped,
		Table:    table,
	}, nil
}

// Export runs cfg and renders the shaped table. A failed export leaves no trace
// beyond its own error.
func (s *ReportServiceImpl) Export(ctx context.Context, cfg engine.Configuration, name, format string) (*ExportFile, error) {
	exporter, err := engine.ExporterFor(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	res, err := s.Run(ctx, cfg)
	if err != nil {
		s.Recorder.ObserveExport(exporter.Format(), false)
		return nil, err
	}

	if name == "" {
		if def, ok := s.Catalog.Source(cfg.DataSource); ok {
			name = def.Label
		}
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, res.Table, name); err != nil {
		s.Logger.Error("Report export failed",
			zap.String("source", string(cfg.DataSource)),
			zap.String("format", exporter.Format()),
			zap.Error(err))
		s.Recorder.ObserveExport(exporter.Format(), false)
		return nil, fmt.Errorf("export %s: %w", exporter.Format(), err)
	}

	s.Recorder.ObserveExport(exporter.Format(), true)
	return &ExportFile{
		Name:        engine.FileName(name, exporter.Format(), s.Now()),
		ContentType: exporter.ContentType(),
		Data:        buf.Bytes(),
		Rows:        res.RowCount,
	}, nil
}
