package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/json-iterator/go"
)

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// Open returns the destination for a run log. An empty path or "-" writes
// to stdout, which Close leaves open.
func Open(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return &nopWriteCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	return f, nil
}

// WriteJSON encodes run as indented JSON.
func WriteJSON(w io.Writer, run Run) error {
	enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.RunID, err)
	}
	return nil
}

// ReadJSON decodes a run log written by WriteJSON. Candidate motions come
// back in their flat form.
func ReadJSON(r io.Reader) (Run, error) {
	var run Run
	if err := json.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(&run); err != nil {
		return Run{}, fmt.Errorf("failed to decode run log: %w", err)
	}
	return run, nil
}

// Save writes run to path, or stdout for "" and "-".
func Save(path string, run Run) (err error) {
	w, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()
	return WriteJSON(w, run)
}
