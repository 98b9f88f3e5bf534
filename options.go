package jsonshape

import (
	"github.com/viant/tagly/format/text"
	"golang.org/x/text/encoding"
)

// NumericMode controls how bare, unquoted, ambiguous numeric tokens are
// classified under json/anydata/union targets. It has no effect on
// explicitly typed numeric fields.
type NumericMode int

const (
	NumericPlain NumericMode = iota
	NumericDecimalPreferred
	NumericFloatPreferred
)

// Option customizes a parse call.
type Option interface {
	apply(*options)
}

type optionFn func(*options)

func (o optionFn) apply(opts *options) { o(opts) }

type options struct {
	numericMode NumericMode
	chunkSize   int
	charset     encoding.Encoding
	hooks       ScannerHooks
	caseFormat  text.CaseFormat
}

// WithNumericMode selects the classification of ambiguous bare numeric
// tokens under generic targets.
func WithNumericMode(mode NumericMode) Option {
	return optionFn(func(o *options) { o.numericMode = mode })
}

// WithChunkSize sets the read chunk size used by ParseReader.
func WithChunkSize(size int) Option {
	return optionFn(func(o *options) {
		if size > 0 {
			o.chunkSize = size
		}
	})
}

// WithCharset decodes reader input through the supplied character set before
// parsing; the default is UTF-8 passthrough.
func WithCharset(enc encoding.Encoding) Option {
	return optionFn(func(o *options) { o.charset = enc })
}

// WithScannerHooks overrides the block-scan hooks used by the state machine.
func WithScannerHooks(hooks ScannerHooks) Option {
	return optionFn(func(o *options) {
		if hooks != nil {
			o.hooks = hooks
		}
	})
}

// WithCaseFormat sets the JSON name case format applied when deriving record
// shapes from Go structs in Bind.
func WithCaseFormat(caseFormat text.CaseFormat) Option {
	return optionFn(func(o *options) { o.caseFormat = caseFormat })
}

func defaultOptions() options {
	return options{
		numericMode: NumericPlain,
		chunkSize:   4096,
		hooks:       scalarScannerHooks{},
		caseFormat:  text.CaseFormatUndefined,
	}
}

func resolveOptions(opts []Option) options {
	result := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&result)
	}
	return result
}
