package model

// Step identifies one of the independent rewrite steps of a conversion.
type Step string

const (
	// StepConstructor rewrites the constructor definition in the implementation file.
	StepConstructor Step = "constructor"
	// StepHeader rewrites the constructor declaration in the matching header.
	StepHeader Step = "header"
	// StepCallSite rewrites make_shared construction calls in entry-point files.
	StepCallSite Step = "call-site"
)

// Status represents the result of a single rewrite operation.
type Status int

const (
	// Converted indicates the file was rewritten.
	Converted Status = iota
	// AlreadyConverted indicates the file already had the target shape.
	AlreadyConverted
	// NotFound indicates the expected file or pattern was absent.
	NotFound
	// Unchanged indicates the file was inspected but nothing matched.
	Unchanged
	// DecodeFailed indicates the file is not valid UTF-8 text.
	DecodeFailed
	// Failed indicates an I/O error while reading or writing.
	Failed
	// Skipped indicates the operator declined the candidate.
	Skipped
)

func (s Status) String() string {
	switch s {
	case Converted:
		return "converted"
	case AlreadyConverted:
		return "already-converted"
	case NotFound:
		return "not-found"
	case Unchanged:
		return "unchanged"
	case DecodeFailed:
		return "decode-failed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for candidate := Converted; candidate <= Skipped; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}

	return &UnknownStatusError{Value: string(text)}
}

// UnknownStatusError is returned when decoding an unrecognized status label.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return "unknown status: " + e.Value
}

// Outcome is the reportable result of one rewrite operation on one file.
type Outcome struct {
	Step      Step          `yaml:"step"`
	Candidate NodeCandidate `yaml:"candidate"`
	Path      Path          `yaml:"path,omitempty"`
	Status    Status        `yaml:"status"`
	Message   string        `yaml:"message,omitempty"`
}

// Changed reports whether the outcome wrote a file.
func (o Outcome) Changed() bool {
	return o.Status == Converted
}

// Report is the persisted record of a conversion run.
type Report struct {
	Root     Path      `yaml:"root"`
	DryRun   bool      `yaml:"dry_run"`
	Outcomes []Outcome `yaml:"outcomes"`
}
