package tracing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVTraceWriter writes records into a CSV file.
type CSVTraceWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
	csv  *csv.Writer

	records    []Record
	bufferSize int
}

// NewCSVTraceWriter creates a writer for path + ".csv".
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// FileName returns the CSV file name.
func (w *CSVTraceWriter) FileName() string {
	return w.path + ".csv"
}

// Init creates the file and writes the header.
func (w *CSVTraceWriter) Init() error {
	if w.path == "" {
		w.path = "roboeyes_trace_" + xid.New().String()
	}

	filename := w.FileName()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("%w: %s", ErrTraceExists, filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("tracing: creating %s: %w", filename, err)
	}

	w.file = file
	w.csv = csv.NewWriter(file)

	if err := w.csv.Write([]string{
		"id", "session", "kind", "source", "eyes", "detail", "time_ms",
	}); err != nil {
		return fmt.Errorf("tracing: writing header: %w", err)
	}

	atexit.Register(func() { _ = w.Close() })

	return nil
}

// Write buffers a record.
func (w *CSVTraceWriter) Write(r Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.records = append(w.records, r)
	if len(w.records) >= w.bufferSize {
		_ = w.flushLocked()
	}
}

// Flush writes the buffered records to the file.
func (w *CSVTraceWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.flushLocked()
}

func (w *CSVTraceWriter) flushLocked() error {
	if w.csv == nil {
		return nil
	}

	for _, r := range w.records {
		err := w.csv.Write([]string{
			r.ID,
			r.Session,
			r.Kind,
			r.Source,
			r.Eyes,
			r.Detail,
			strconv.FormatUint(uint64(r.Time), 10),
		})
		if err != nil {
			return fmt.Errorf("tracing: writing record %s: %w", r.ID, err)
		}
	}

	w.records = nil
	w.csv.Flush()

	return w.csv.Error()
}

// Close flushes and closes the file. Closing twice does nothing.
func (w *CSVTraceWriter) Close() error {
	err := w.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return err
	}

	if cerr := w.file.Close(); cerr != nil && err == nil {
		err = cerr
	}

	w.file = nil
	w.csv = nil

	return err
}
