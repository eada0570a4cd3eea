package extract

// State is a step of one extraction call.
type State int

const (
	StateOpening State = iota
	StateReadingMagic
	StateNotApplicable
	StateReadingHeader
	StateParsingHeader
	StateDecodingBase64
	StateDecodingImage
	StateResizing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateOpening:        "opening",
	StateReadingMagic:   "reading-magic",
	StateNotApplicable:  "not-applicable",
	StateReadingHeader:  "reading-header",
	StateParsingHeader:  "parsing-header",
	StateDecodingBase64: "decoding-base64",
	StateDecodingImage:  "decoding-image",
	StateResizing:       "resizing",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateNotApplicable
}

// phase is the metrics label under which time spent in s is recorded.
func (s State) phase() string {
	switch s {
	case StateOpening:
		return "open"
	case StateReadingMagic, StateReadingHeader, StateParsingHeader:
		return "read_header"
	case StateDecodingBase64:
		return "decode_base64"
	case StateDecodingImage:
		return "decode_image"
	case StateResizing:
		return "resize"
	default:
		return ""
	}
}
