package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore tees every entry to the async DB writer before the wrapped core.
type DBCore struct {
	zapcore.Core
	writer  *DBLogWriter
	context []zapcore.Field
}

func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps the tee for child loggers.
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	ctx := make([]zapcore.Field, 0, len(c.context)+len(fields))
	ctx = append(ctx, c.context...)
	ctx = append(ctx, fields...)
	return &DBCore{Core: c.Core.With(fields), writer: c.writer, context: ctx}
}

func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	rec := LogEntry{
		Level:   entry.Level,
		Message: entry.Message,
		Caller:  entry.Caller.Function,
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range append(c.context, fields...) {
		f.AddTo(enc)
		switch f.Key {
		case "ip":
			rec.IpAddress = f.String
		case "user_id":
			rec.UserID = f.String
		case "source":
			rec.Source = f.String
		}
	}
	if errVal, ok := enc.Fields["error"].(string); ok {
		rec.Error = errVal
	}

	c.writer.AddLog(rec)

	return c.Core.Write(entry, fields)
}

func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
