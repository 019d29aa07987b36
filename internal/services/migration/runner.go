// Package migration upgrades stored data to the current schema version.
package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/infrastructure/kv"
	repokv "github.com/fastygo/todos/repository/kv"
)

// CurrentVersion is the schema version written after a successful run.
const CurrentVersion = "1.1.0"

var (
	priorityValue = []byte(`"` + string(domain.DefaultPriority) + `"`)
	priorityField = append([]byte(`"priority":`), priorityValue...)
)

// Result summarizes a run.
type Result struct {
	// FromVersion is the marker found before the run; empty when unset.
	FromVersion string
	// Skipped is true when the marker already matched CurrentVersion.
	Skipped bool
	// Backfilled counts todos that received the default priority.
	Backfilled int
	// Malformed is true when the stored todos could not be parsed and were left in place.
	Malformed bool
}

// Runner applies the priority backfill once per store.
type Runner struct {
	adapter *kv.Adapter
	logger  *zap.Logger
}

// NewRunner returns a Runner operating on adapter.
func NewRunner(adapter *kv.Adapter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{adapter: adapter, logger: logger}
}

// Version returns the stored schema marker, or "" when unset.
func (r *Runner) Version(ctx context.Context) string {
	v, _ := r.adapter.LoadString(ctx, repokv.VersionKey)
	return v
}

// Pending reports whether Run would do work.
func (r *Runner) Pending(ctx context.Context) bool {
	return r.Version(ctx) != CurrentVersion
}

// Run migrates the store to CurrentVersion. It is a no-op when the marker is
// already current. Fields other than priority are preserved byte for byte.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if !r.adapter.Available(ctx) {
		return Result{}, domain.WrapError(domain.ErrCodeUnavailable, "migration skipped", kv.ErrUnavailable)
	}

	res := Result{FromVersion: r.Version(ctx)}
	if res.FromVersion == CurrentVersion {
		res.Skipped = true
		return res, nil
	}

	r.logger.Info("migrating stored data",
		zap.String("from", res.FromVersion),
		zap.String("to", CurrentVersion),
	)

	raw, err := r.adapter.Get(ctx, repokv.TodosKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return res, storageError("read todos", err)
	default:
		patched, count, perr := BackfillPriority(raw)
		if perr != nil {
			r.logger.Error("stored todos are malformed; leaving them untouched", zap.Error(perr))
			res.Malformed = true
			break
		}
		if count > 0 {
			if err := r.adapter.Put(ctx, repokv.TodosKey, patched); err != nil {
				return res, storageError("write migrated todos", err)
			}
		}
		res.Backfilled = count
	}

	if err := r.adapter.SaveString(ctx, repokv.VersionKey, CurrentVersion); err != nil {
		return res, storageError("write version marker", err)
	}

	r.logger.Info("migration complete", zap.Int("backfilled", res.Backfilled))
	return res, nil
}

// BackfillPriority adds the default priority to every record in the JSON
// array raw whose priority is missing or falsy. Only the priority bytes of a
// changed record are touched; everything else, including key order and
// whitespace, is copied as is. It returns the rewritten array and the number
// of records changed; when nothing changed the input is returned as is.
func BackfillPriority(raw []byte) ([]byte, int, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, 0, fmt.Errorf("decode todos: %w", err)
	}
	spans, err := elementSpans(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("decode todos: %w", err)
	}

	var out bytes.Buffer
	prev, changed := 0, 0
	for i, sp := range spans {
		patched, ok, err := backfillRecord(raw[sp.start:sp.end])
		if err != nil {
			return nil, 0, fmt.Errorf("todo %d: %w", i, err)
		}
		if !ok {
			continue
		}
		out.Write(raw[prev:sp.start])
		out.Write(patched)
		prev = sp.end
		changed++
	}
	if changed == 0 {
		return raw, 0, nil
	}
	out.Write(raw[prev:])
	return out.Bytes(), changed, nil
}

func backfillRecord(rec []byte) ([]byte, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec, &fields); err != nil {
		return nil, false, err
	}
	if fields == nil {
		return nil, false, errors.New("record is null")
	}

	current, present := fields["priority"]
	if present && truthy(current) {
		return rec, false, nil
	}

	if present {
		sp, err := memberSpan(rec, "priority")
		if err != nil {
			return nil, false, err
		}
		out := make([]byte, 0, len(rec)+len(priorityValue))
		out = append(out, rec[:sp.start]...)
		out = append(out, priorityValue...)
		out = append(out, rec[sp.end:]...)
		return out, true, nil
	}

	trimmed := bytes.TrimRight(rec, " \t\r\n")
	closing := len(trimmed) - 1
	out := make([]byte, 0, len(rec)+len(priorityField)+1)
	out = append(out, trimmed[:closing]...)
	if len(fields) > 0 {
		out = append(out, ',')
	}
	out = append(out, priorityField...)
	out = append(out, '}')
	return out, true, nil
}

// span is a half-open byte range of one JSON value.
type span struct {
	start, end int
}

// elementSpans returns the byte range of each element of the JSON array raw.
func elementSpans(raw []byte) ([]span, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var spans []span
	for dec.More() {
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		end := int(dec.InputOffset())
		spans = append(spans, span{start: end - len(v), end: end})
	}
	return spans, nil
}

// memberSpan returns the byte range of the value under key in the JSON object
// rec. With duplicate keys the last one wins, as in json.Unmarshal.
func memberSpan(rec []byte, key string) (span, error) {
	dec := json.NewDecoder(bytes.NewReader(rec))
	if err := expectDelim(dec, '{'); err != nil {
		return span{}, err
	}
	found, ok := span{}, false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return span{}, err
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return span{}, err
		}
		if name, _ := tok.(string); name == key {
			end := int(dec.InputOffset())
			found, ok = span{start: end - len(v), end: end}, true
		}
	}
	if !ok {
		return span{}, fmt.Errorf("key %q not found", key)
	}
	return found, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func storageError(message string, err error) error {
	code := domain.ErrCodeUnavailable
	if errors.Is(err, kv.ErrQuotaExceeded) {
		code = domain.ErrCodeQuotaExceeded
	}
	return domain.WrapError(code, message, err)
}

func truthy(v json.RawMessage) bool {
	switch string(bytes.TrimSpace(v)) {
	case "null", "false", `""`, "0":
		return false
	default:
		return true
	}
}
