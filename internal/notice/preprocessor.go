package notice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/StinkyLord/notice-builder/internal/copyright"
	"github.com/StinkyLord/notice-builder/internal/licenses"
	"github.com/StinkyLord/notice-builder/internal/model"
)

// ErrPreprocessingFailed wraps any error raised by a Preprocessor, including
// an invalid returned document.
var ErrPreprocessingFailed = errors.New("notice preprocessing failed")

// Environment is the read-only context handed to a Preprocessor. Hooks must
// not modify any of it.
type Environment struct {
	Result   *model.AnalysisResult
	Garbage  *copyright.Garbage
	Licenses *licenses.Configuration
	Logger   *slog.Logger
}

// Preprocessor rewrites a document between assembly and rendering. It
// receives its own copy of the document and returns the document to render.
type Preprocessor interface {
	Preprocess(ctx context.Context, doc Document, env Environment) (Document, error)
}

// PreprocessorFunc adapts a function to the Preprocessor interface.
type PreprocessorFunc func(ctx context.Context, doc Document, env Environment) (Document, error)

// Preprocess calls f.
func (f PreprocessorFunc) Preprocess(ctx context.Context, doc Document, env Environment) (Document, error) {
	return f(ctx, doc, env)
}
