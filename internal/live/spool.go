package live

import (
	"fmt"
	"log/slog"
	"os"
)

// spool stages received audio in uniquely named temporary files.
type spool struct {
	dir string
}

// with writes data to a new temp file, calls fn with its path and removes
// the file afterwards, whatever fn returns.
func (s spool) with(data []byte, fn func(path string) error) error {
	f, err := os.CreateTemp(s.dir, "parley-audio-*.wav")
	if err != nil {
		return fmt.Errorf("creating audio spool file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Error("removing audio spool file", "path", path, "error", err)
		}
	}()

	_, werr := f.Write(data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("writing audio spool file: %w", werr)
	}
	return fn(path)
}
