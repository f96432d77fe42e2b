package logger

import (
	"context"
	"fmt"
	"time"

	"go-contractor/internal/config"
	"go-contractor/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to the worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	UserID    string
	Source    string
	Error     string
	Caller    string
}

// LogRecord is the document stored in the logs collection.
type LogRecord struct {
	AppID        string    `bson:"app_id"`
	Message      string    `bson:"message"`
	LogLevelId   int       `bson:"log_level_id"`
	IpAddress    string    `bson:"ip_address,omitempty"`
	UserID       string    `bson:"user_id,omitempty"`
	Source       string    `bson:"source,omitempty"`
	Error        string    `bson:"error,omitempty"`
	Caller       string    `bson:"caller,omitempty"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}

// LogSink stores one record. The Mongo collection satisfies it.
type LogSink interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	sink    LogSink
	logChan chan LogEntry
	done    chan struct{}
	appId   string
}

func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	return newDBLogWriter(mongodb.DB.Collection("logs"), cfg.AppId, 1000)
}

func newDBLogWriter(sink LogSink, appID string, buffer int) *DBLogWriter {
	writer := &DBLogWriter{
		sink:    sink,
		logChan: make(chan LogEntry, buffer),
		done:    make(chan struct{}),
		appId:   appID,
	}
	go writer.processLogs()
	return writer
}

// AddLog never blocks the caller; a full buffer drops the entry.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close drains pending entries and stops the worker.
func (w *DBLogWriter) Close() {
	close(w.logChan)
	<-w.done
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		record := LogRecord{
			AppID:        w.appId,
			Message:      entry.Message,
			LogLevelId:   mapLevelToInt(entry.Level),
			IpAddress:    entry.IpAddress,
			UserID:       entry.UserID,
			Source:       entry.Source,
			Error:        entry.Error,
			Caller:       entry.Caller,
			CreatedOnUtc: time.Now().UTC(),
		}

		// errors are ignored so logging never takes the app down
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		w.sink.InsertOne(ctx, record)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
