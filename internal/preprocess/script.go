// Package preprocess runs user-supplied Starlark scripts that rewrite a
// notice document before it is rendered.
//
// A script defines
//
//	def preprocess(report, ctx):
//	    ...
//	    return report
//
// where report is a dict with "headers" (list of strings), "findings" (dict
// of component id to dict of license to list of copyrights), and "footers"
// (list of strings). The returned dict may omit keys to keep that part of the
// document unchanged. ctx is a frozen struct with read-only views of the
// analysis result (components, scan results, excludes and resolutions), the
// copyright garbage, and the license configuration.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/StinkyLord/notice-builder/internal/notice"
)

// DefaultMaxSteps bounds script execution when no limit is configured.
const DefaultMaxSteps = 10_000_000

const entryPoint = "preprocess"

// ErrNoEntryPoint is returned when a script does not define preprocess().
var ErrNoEntryPoint = errors.New("script does not define a preprocess function")

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
}

var predeclared = starlark.StringDict{
	"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
}

// Script is a compiled preprocessing script. It is safe for concurrent use;
// every call runs in a fresh Starlark thread with fresh globals.
type Script struct {
	name     string
	prog     *starlark.Program
	maxSteps uint64
}

var _ notice.Preprocessor = (*Script)(nil)

// Option configures a Script.
type Option func(*Script)

// WithMaxSteps limits the number of Starlark computation steps per call.
// Zero means DefaultMaxSteps.
func WithMaxSteps(n uint64) Option {
	return func(s *Script) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// Compile parses and resolves src. name is used in error messages and logs.
// Compilation failures wrap notice.ErrPreprocessingFailed.
func Compile(name, src string, opts ...Option) (*Script, error) {
	_, prog, err := starlark.SourceProgramOptions(fileOptions, name, src, predeclared.Has)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s: %w", notice.ErrPreprocessingFailed, name, err)
	}

	s := &Script{name: name, prog: prog, maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Preprocess implements notice.Preprocessor. Every failure, including a
// returned value that is not a valid document, wraps
// notice.ErrPreprocessingFailed.
func (s *Script) Preprocess(ctx context.Context, doc notice.Document, env notice.Environment) (notice.Document, error) {
	out, err := s.run(ctx, doc, env)
	if err != nil {
		return notice.Document{}, fmt.Errorf("%w: %s: %w", notice.ErrPreprocessingFailed, s.name, err)
	}

	return out, nil
}

func (s *Script) run(ctx context.Context, doc notice.Document, env notice.Environment) (notice.Document, error) {
	logger := env.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	thread := &starlark.Thread{
		Name: s.name,
		Print: func(_ *starlark.Thread, msg string) {
			logger.InfoContext(ctx, msg, "script", s.name)
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, errors.New("load is not supported in preprocessing scripts")
		},
	}
	thread.SetMaxExecutionSteps(s.maxSteps)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	globals, err := s.prog.Init(thread, predeclared)
	if err != nil {
		return notice.Document{}, describe(err)
	}

	fn, ok := globals[entryPoint].(starlark.Callable)
	if !ok {
		return notice.Document{}, ErrNoEntryPoint
	}

	result, err := starlark.Call(thread, fn, starlark.Tuple{documentValue(doc), contextValue(env)}, nil)
	if err != nil {
		return notice.Document{}, describe(err)
	}

	if err := ctx.Err(); err != nil {
		return notice.Document{}, err
	}

	value, err := toGo(result)
	if err != nil {
		return notice.Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := validate(value); err != nil {
		return notice.Document{}, err
	}

	m, _ := value.(map[string]any)

	return fromGo(m, doc)
}

// describe appends the Starlark call stack to evaluation errors.
func describe(err error) error {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) && len(evalErr.CallStack) > 0 {
		return fmt.Errorf("%w\n%s", err, evalErr.CallStack.String())
	}

	return err
}
