package logx

import "log/slog"

type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter wraps a *slog.Logger in the Logger interface.
func NewSlogAdapter(l *slog.Logger) Logger {
	return &slogAdapter{l: l}
}

func (s *slogAdapter) Debug(msg string, fields ...Field) { s.l.Debug(msg, toSlogArgs(fields)...) }
func (s *slogAdapter) Info(msg string, fields ...Field)  { s.l.Info(msg, toSlogArgs(fields)...) }
func (s *slogAdapter) Warn(msg string, fields ...Field)  { s.l.Warn(msg, toSlogArgs(fields)...) }
func (s *slogAdapter) Error(msg string, fields ...Field) { s.l.Error(msg, toSlogArgs(fields)...) }

func (s *slogAdapter) With(fields ...Field) Logger {
	return &slogAdapter{l: s.l.With(toSlogArgs(fields)...)}
}

// Sync is a no-op, slog writes unbuffered.
func (s *slogAdapter) Sync() error { return nil }

func toSlogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}
