package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FileExporter appends legendnb spans to a JSONL file, one span per line,
// so mode switches and language loads can be inspected with jq. Spans from
// other instrumentation are dropped.
type FileExporter struct {
	file    *os.File
	mu      sync.Mutex
	dropped int
}

// NewFileExporter opens (or creates, with parent directories) path for appending.
func NewFileExporter(path string) (*FileExporter, error) {
	cleanPath := filepath.Clean(path)

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}

	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &FileExporter{file: file}, nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *FileExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.file == nil {
		return fmt.Errorf("export spans: exporter is shut down")
	}
	encoder := json.NewEncoder(e.file)
	for _, span := range spans {
		if !OwnSpan(span.Name()) {
			e.dropped++
			continue
		}
		if err := encoder.Encode(spanToRecord(span)); err != nil {
			return fmt.Errorf("encode span %s: %w", span.Name(), err)
		}
	}
	return nil
}

// Dropped returns how many foreign spans were skipped.
func (e *FileExporter) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Shutdown closes the file. Later exports fail.
func (e *FileExporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.file != nil {
		err := e.file.Close()
		e.file = nil
		return err
	}
	return nil
}

// SpanRecord is one exported line. The cell, mode and language attributes
// legendnb sets are lifted into their own fields; anything else stays in
// Attributes.
type SpanRecord struct {
	TraceID      string  `json:"trace_id"`
	SpanID       string  `json:"span_id"`
	ParentSpanID string  `json:"parent_span_id,omitempty"`
	Name         string  `json:"name"`
	StartTime    string  `json:"start_time"`
	DurationMs   float64 `json:"duration_ms"`
	Status       string  `json:"status"`
	Error        string  `json:"error,omitempty"`

	Cell     string `json:"cell,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Mutated  *bool  `json:"mutated,omitempty"`
	Identity string `json:"identity,omitempty"`
	Language string `json:"language,omitempty"`
	Theme    string `json:"theme,omitempty"`

	Attributes map[string]any `json:"attributes,omitempty"`
	Events     []EventRecord  `json:"events,omitempty"`
}

// EventRecord is a span event inside a SpanRecord.
type EventRecord struct {
	Name       string         `json:"name"`
	Timestamp  string         `json:"timestamp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// OwnSpan reports whether name is one of the spans legendnb emits.
func OwnSpan(name string) bool {
	for _, prefix := range spanPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func spanToRecord(span sdktrace.ReadOnlySpan) SpanRecord {
	sc := span.SpanContext()
	rec := SpanRecord{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		Name:       span.Name(),
		StartTime:  span.StartTime().Format(time.RFC3339Nano),
		DurationMs: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000.0,
		Status:     statusString(span.Status().Code),
	}
	if span.Parent().IsValid() {
		rec.ParentSpanID = span.Parent().SpanID().String()
	}
	if span.Status().Code == codes.Error {
		rec.Error = span.Status().Description
	}

	for _, kv := range span.Attributes() {
		switch string(kv.Key) {
		case AttrCellID:
			rec.Cell = kv.Value.Emit()
		case AttrModeFrom:
			rec.From = kv.Value.Emit()
		case AttrModeTo:
			rec.To = kv.Value.Emit()
		case AttrMutated:
			mutated := kv.Value.AsBool()
			rec.Mutated = &mutated
		case AttrIdentity:
			rec.Identity = kv.Value.Emit()
		case AttrLanguageName:
			rec.Language = kv.Value.Emit()
		case AttrThemeName:
			rec.Theme = kv.Value.Emit()
		default:
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]any)
			}
			rec.Attributes[string(kv.Key)] = kv.Value.AsInterface()
		}
	}

	for _, evt := range span.Events() {
		rec.Events = append(rec.Events, EventRecord{
			Name:       evt.Name,
			Timestamp:  evt.Time.Format(time.RFC3339Nano),
			Attributes: attrMap(evt.Attributes),
		})
	}
	return rec
}

func attrMap(kvs []attribute.KeyValue) map[string]any {
	if len(kvs) == 0 {
		return nil
	}
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func statusString(code codes.Code) string {
	switch code {
	case codes.Ok:
		return "OK"
	case codes.Error:
		return "ERROR"
	default:
		return "UNSET"
	}
}
