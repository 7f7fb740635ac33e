package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of an analysis result file.
type Format string

// Supported analysis result formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const lz4Extension = ".lz4"

// ErrUnsupportedFormat is returned for files whose extension names no known format.
var ErrUnsupportedFormat = errors.New("unsupported analysis result format")

// FormatForPath derives the format and compression from a file name:
// "result.yml", "result.json" and their ".lz4"-suffixed variants.
func FormatForPath(path string) (format Format, compressed bool, err error) {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, lz4Extension) {
		compressed = true
		name = strings.TrimSuffix(name, lz4Extension)
	}

	switch filepath.Ext(name) {
	case ".yml", ".yaml":
		return FormatYAML, compressed, nil
	case ".json":
		return FormatJSON, compressed, nil
	default:
		return "", false, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadAnalysisResult reads an analysis result from path.
func LoadAnalysisResult(path string) (*AnalysisResult, error) {
	format, compressed, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open analysis result: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		r = lz4.NewReader(f)
	}

	result, err := DecodeAnalysisResult(r, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// DecodeAnalysisResult decodes an analysis result in the given format.
func DecodeAnalysisResult(r io.Reader, format Format) (*AnalysisResult, error) {
	var result AnalysisResult

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&result); err != nil {
			return nil, fmt.Errorf("json decode: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&result); err != nil {
			if errors.Is(err, io.EOF) {
				return &result, nil
			}
			return nil, fmt.Errorf("yaml decode: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return &result, nil
}
