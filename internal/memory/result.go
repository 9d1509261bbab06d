package memory

// Status is the outcome of a read.
type Status int

const (
	StatusEmpty Status = iota
	StatusFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Source names the stage that produced a recall or history block.
type Source string

const (
	SourceNone     Source = "none"
	SourceSemantic Source = "semantic"
	SourceKeyword  Source = "keyword"
	SourceRecent   Source = "recent"
	SourceHistory  Source = "history"
)

// Result is a rendered read. Text is empty unless Status is StatusFound.
type Result struct {
	Status Status
	Source Source
	Text   string
	Err    error
}

// OK reports whether the read produced text.
func (r Result) OK() bool {
	return r.Status == StatusFound
}
