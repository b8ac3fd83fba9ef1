package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

type contextKey struct{}

// ContextWithFields stores fields, typically the run identifier, on ctx so
// providers can attach them to loggers derived through WithContext. Fields
// already on ctx are kept unless overridden.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextKey{}, merged)
}

// ContextFields returns a copy of the fields stored on ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// WithFields attaches fields when logger implements FieldsLogger and returns
// logger unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fl, ok := logger.(interfaces.FieldsLogger); ok {
		return fl.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithRecordContext annotates logger with a record's content type, slug and
// output path. Blank values are skipped.
func WithRecordContext(logger interfaces.Logger, contentType, slug, path string) interfaces.Logger {
	fields := map[string]any{}
	for key, value := range map[string]string{
		fieldRecordType: contentType,
		fieldRecordSlug: slug,
		fieldRecordPath: path,
	} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			fields[key] = trimmed
		}
	}
	return WithFields(logger, fields)
}
