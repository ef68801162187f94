package sheetcalc

import (
	"io"
	"log"
	"strings"
)

// Options holds configuration for evaluators and workbooks.
type Options struct {
	funcs  map[string]Function
	logger *log.Logger
}

func defaultOptions() *Options {
	return &Options{
		logger: log.New(io.Discard, "", 0),
	}
}

func applyOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures an Evaluator or a Workbook.
type Option func(*Options)

// WithFunction registers a spreadsheet function under the given name.
// Names are case-insensitive; a built-in of the same name is replaced.
func WithFunction(name string, fn Function) Option {
	return func(o *Options) {
		if o.funcs == nil {
			o.funcs = make(map[string]Function)
		}
		o.funcs[strings.ToUpper(name)] = fn
	}
}

// WithUserFunction registers a function whose body is an expression over
// the named parameters, compiled on first use.
func WithUserFunction(name string, params []string, body string) Option {
	return WithFunction(name, newUserFunction(name, params, body))
}

// WithFunctionPack registers every function the pack declares.
func WithFunctionPack(pack *FunctionPack) Option {
	return func(o *Options) {
		for _, f := range pack.Functions {
			WithFunction(f.Name, newUserFunction(f.Name, f.Params, f.Body))(o)
		}
	}
}

// WithLogger sets the logger used for advisory messages such as
// sort-time rewrite fallbacks (default: discard).
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}
