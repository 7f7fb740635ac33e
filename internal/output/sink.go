// Package output writes rendered notices and reports on them.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Stdout is the output path that selects standard output.
const Stdout = "-"

const filePerm = 0o644

// WriteFile writes data to path, or to stdout when path is "-". Files are
// replaced atomically: data goes to a temporary file in the same directory
// which is then renamed over path.
func WriteFile(path string, data []byte, stdout io.Writer) error {
	if path == Stdout {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}

		return nil
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()

		return fmt.Errorf("chmod %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}

	return nil
}
