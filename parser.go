package jsonshape

import (
	"fmt"
	"io"
	"sync"

	"github.com/viant/jsonshape/shape"
	"golang.org/x/text/transform"
)

// Parser incrementally decodes a JSON character stream into a value shaped
// by a target type. A Parser is exclusively owned by one caller for the
// duration of a parse; it is reset after every Close, success or failure, so
// no references to constructed values outlive the call.
type Parser struct {
	opts options

	state       parseState
	types       []*shape.Type
	parents     []any
	listIndexes []int
	fieldNames  []string
	// genericDepth is the parent-stack depth at which the active generic
	// scope began; -1 when no generic scope is open.
	genericDepth int

	current any
	err     error

	sb               []byte
	hex              []byte
	escReturn        parseState
	pendingSurrogate rune
	chunkBase        int64
}

// NewParser creates a parser armed with a target type.
func NewParser(target *shape.Type, opts ...Option) *Parser {
	p := &Parser{}
	p.init(target, resolveOptions(opts))
	return p
}

func (p *Parser) init(target *shape.Type, opts options) {
	p.reset()
	p.opts = opts
	p.types = append(p.types, target)
}

// Reset drains all parser state and re-arms the parser for a new parse with
// the supplied target type.
func (p *Parser) Reset(target *shape.Type) {
	p.reset()
	p.types = append(p.types, target)
}

func (p *Parser) reset() {
	for i := range p.types {
		p.types[i] = nil
	}
	p.types = p.types[:0]
	for i := range p.parents {
		p.parents[i] = nil
	}
	p.parents = p.parents[:0]
	p.listIndexes = p.listIndexes[:0]
	p.fieldNames = p.fieldNames[:0]
	p.genericDepth = -1
	p.current = nil
	p.err = nil
	p.sb = p.sb[:0]
	p.hex = p.hex[:0]
	p.pendingSurrogate = 0
	p.chunkBase = 0
	p.state = stateDocStart
}

// Feed consumes one input chunk. The machine suspends at the chunk boundary
// and resumes, mid-token if necessary, on the next Feed.
func (p *Parser) Feed(chunk []byte) error {
	if p.err != nil {
		return p.err
	}
	if len(p.types) == 0 && p.state == stateDocStart {
		return fmt.Errorf("parser is not armed with a target type")
	}
	i := 0
	for i < len(chunk) {
		next, at, err := stateHandlers[p.state](p, chunk, i)
		if err != nil {
			p.err = err
			return err
		}
		p.state = next
		i = at
	}
	p.chunkBase += int64(len(chunk))
	return nil
}

// Close signals end of input and returns the constructed value. The parser
// is reset on every exit path.
func (p *Parser) Close() (any, error) {
	defer p.reset()
	if p.err != nil {
		return nil, p.err
	}
	switch p.state {
	case stateDocEnd:
		return p.current, nil
	case stateNonStringValue:
		// a top-level bare token is terminated by end of input
		if err := p.finishScalar(); err != nil {
			return nil, err
		}
		return p.current, nil
	case stateDocStart:
		return nil, fmt.Errorf("empty JSON document")
	default:
		return nil, fmt.Errorf("unexpected end of input")
	}
}

var parserPool = sync.Pool{
	New: func() any {
		return &Parser{genericDepth: -1}
	},
}

// Parse decodes data against the target type using a pooled parser.
func Parse(data []byte, target *shape.Type, opts ...Option) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("target type was nil")
	}
	p := parserPool.Get().(*Parser)
	p.init(target, resolveOptions(opts))
	defer func() {
		p.reset()
		parserPool.Put(p)
	}()
	if err := p.Feed(data); err != nil {
		return nil, err
	}
	return p.Close()
}

// ParseString decodes input against the target type.
func ParseString(input string, target *shape.Type, opts ...Option) (any, error) {
	return Parse([]byte(input), target, opts...)
}

// ParseReader decodes a byte stream in chunks, optionally transcoding it
// from a caller-specified character set first.
func ParseReader(reader io.Reader, target *shape.Type, opts ...Option) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("target type was nil")
	}
	cfg := resolveOptions(opts)
	if cfg.charset != nil {
		reader = transform.NewReader(reader, cfg.charset.NewDecoder())
	}
	p := parserPool.Get().(*Parser)
	p.init(target, cfg)
	defer func() {
		p.reset()
		parserPool.Put(p)
	}()
	buf := make([]byte, cfg.chunkSize)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if feedErr := p.Feed(buf[:n]); feedErr != nil {
				return nil, feedErr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return p.Close()
}
