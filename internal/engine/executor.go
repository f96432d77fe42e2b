package engine

import (
	"context"
	"errors"
	"time"

	"go-contractor/internal/datastore"

	"go.uber.org/zap"
)

// ErrNoResult is the only failure a caller sees when the backend call fails.
var ErrNoResult = errors.New("could not run report")

// Result is one execution's output. It is never persisted.
type Result struct {
	Rows     []datastore.Row `json:"rows"`
	RowCount int             `json:"row_count"`
	Fields   []FieldMetadata `json:"fields"`
	Dropped  []string        `json:"dropped"`
}

// Recorder receives execution outcomes. internal/metrics provides the Prometheus one.
type Recorder interface {
	ObserveExecution(source string, ok bool, elapsed time.Duration, dropped int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveExecution(string, bool, time.Duration, int) {}

type Executor interface {
	Compile(cfg Configuration) (Compiled, error)
	Execute(ctx context.Context, cfg Configuration) (*Result, error)
}

type ExecutorImpl struct {
	Translator *Translator
	Client     datastore.Client
	Logger     *zap.Logger
	Recorder   Recorder
}

func NewExecutor(t *Translator, client datastore.Client, logger *zap.Logger, rec Recorder) Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &ExecutorImpl{Translator: t, Client: client, Logger: logger, Recorder: rec}
}

func (e *ExecutorImpl) Compile(cfg Configuration) (Compiled, error) {
	return e.Translator.Compile(cfg)
}

// Execute makes exactly one backend round trip. There is no retry: the user re-runs the report.
func (e *ExecutorImpl) Execute(ctx context.Context, cfg Configuration) (*Result, error) {
	compiled, err := e.Translator.Compile(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := e.Client.Query(ctx, compiled.Request)
	elapsed := time.Since(start)
	if err != nil {
		e.Logger.Error("Report execution failed",
			zap.String("source", string(cfg.DataSource)),
			zap.String("driver", e.Client.Driver()),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		e.Recorder.ObserveExecution(string(cfg.DataSource), false, elapsed, len(compiled.Dropped))
		return nil, ErrNoResult
	}

	if len(raw) > compiled.Limit {
		raw = raw[:compiled.Limit]
	}

	rows := make([]datastore.Row, len(raw))
	for i, r := range raw {
		row := make(datastore.Row, len(compiled.Fields))
		for _, f := range compiled.Fields {
			row[f.Key] = r[f.Key]
		}
		rows[i] = row
	}

	e.Recorder.ObserveExecution(string(cfg.DataSource), true, elapsed, len(compiled.Dropped))
	e.Logger.Info("Report executed",
		zap.String("source", string(cfg.DataSource)),
		zap.Int("row_count", len(rows)),
		zap.Int("dropped_predicates", len(compiled.Dropped)),
		zap.Duration("duration", elapsed))

	return &Result{
		Rows:     rows,
		RowCount: len(rows),
		Fields:   compiled.Fields,
		Dropped:  compiled.Dropped,
	}, nil
}
