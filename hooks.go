package jsonshape

// ScannerHooks contains block-scan hooks the state machine uses to move over
// a chunk quickly. Scans never look past the current chunk; the machine
// suspends at chunk boundaries and resumes on the next Feed.
type ScannerHooks interface {
	SkipWhitespace(data []byte, pos int) int
	FindQuoteOrEscape(data []byte, pos int) (quotePos int, escapePos int)
}

type scalarScannerHooks struct{}

func (s scalarScannerHooks) SkipWhitespace(data []byte, pos int) int {
	for pos < len(data) {
		switch data[pos] {
		case ' ', '\n', '\r', '\t':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func (s scalarScannerHooks) FindQuoteOrEscape(data []byte, pos int) (int, int) {
	for i := pos; i < len(data); i++ {
		if data[i] == '"' {
			return i, -1
		}
		if data[i] == '\\' {
			return -1, i
		}
	}
	return -1, -1
}
