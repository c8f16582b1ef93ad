package logger

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logging interface used across the service.
type Logger interface {
	Info(ctx context.Context, message string, fields map[string]interface{})
	Error(ctx context.Context, message string, err error, fields map[string]interface{})
	Warn(ctx context.Context, message string, fields map[string]interface{})
	Debug(ctx context.Context, message string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
}

type ctxKey string

const correlationIDKey ctxKey = "correlation_id"

// WithCorrelationID stores the request correlation id in the context so
// every log line emitted downstream carries it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation id or the empty string.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// Config configures the logger at boot.
type Config struct {
	Level       string
	Format      string
	ServiceName string
}

type structuredLogger struct {
	logger *logrus.Logger
	fields map[string]interface{}
}

// New builds a logrus-backed Logger writing JSON (or text) to stdout.
func New(cfg Config) Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}
	l.SetOutput(os.Stdout)

	return &structuredLogger{
		logger: l,
		fields: map[string]interface{}{
			"service": cfg.ServiceName,
		},
	}
}

func (l *structuredLogger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.entry(ctx, nil, fields).Info(message)
}

func (l *structuredLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	l.entry(ctx, err, fields).Error(message)
}

func (l *structuredLogger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.entry(ctx, nil, fields).Warn(message)
}

func (l *structuredLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.entry(ctx, nil, fields).Debug(message)
}

func (l *structuredLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &structuredLogger{logger: l.logger, fields: merged}
}

func (l *structuredLogger) entry(ctx context.Context, err error, fields map[string]interface{}) *logrus.Entry {
	logFields := logrus.Fields{}
	for k, v := range l.fields {
		logFields[k] = v
	}
	for k, v := range fields {
		logFields[k] = v
	}
	if cid := CorrelationIDFromContext(ctx); cid != "" {
		logFields["correlation_id"] = cid
	}
	if err != nil {
		logFields["error"] = err.Error()
	}
	return l.logger.WithFields(logFields)
}

// LogAuthEvent records an authentication outcome, success or failure.
func LogAuthEvent(ctx context.Context, log Logger, event, userID, ip string, success bool, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "auth"
	fields["auth_event"] = event
	fields["user_id"] = userID
	fields["ip"] = ip
	fields["success"] = success

	if success {
		log.Info(ctx, "Auth event: "+event, fields)
	} else {
		log.Warn(ctx, "Auth event failed: "+event, fields)
	}
}

// LogSecurityEvent records rate-limit rejections and privilege failures.
func LogSecurityEvent(ctx context.Context, log Logger, event, severity string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "security"
	fields["security_event"] = event
	fields["severity"] = severity

	message := "Security event: " + event
	switch severity {
	case "HIGH":
		log.Error(ctx, message, nil, fields)
	case "MEDIUM":
		log.Warn(ctx, message, fields)
	default:
		log.Info(ctx, message, fields)
	}
}

// LogPerformance records an operation's elapsed time.
func LogPerformance(ctx context.Context, log Logger, operation string, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "performance"
	fields["operation"] = operation
	fields["duration_ms"] = duration.Milliseconds()

	log.Info(ctx, "Performance: "+operation, fields)
}
