package model

// Wildcard is the marker used inside stdout/stderr patterns.
const Wildcard = "..."

// Pattern is an expected stream, one entry per physical line.
type Pattern []string

// Stage holds the expectations for one named phase of a test file.
type Stage struct {
	Name   string
	Status Status
	Stdout Pattern
	Stderr Pattern
	Stdin  *string
	Args   []string
	Env    map[string]string

	RerunIfStatus *Status
	RerunIfStdout Pattern
	RerunIfStderr Pattern
}

// DefaultStage is used for commands whose name the document never mentions.
func DefaultStage(name string) Stage {
	return Stage{
		Name:   name,
		Status: Success,
		Stdout: Pattern{Wildcard},
		Stderr: Pattern{Wildcard},
		Env:    map[string]string{},
	}
}

// HasRerun reports whether any rerun-if clause is configured.
func (s Stage) HasRerun() bool {
	return s.RerunIfStatus != nil || s.RerunIfStdout != nil || s.RerunIfStderr != nil
}

// Document is the parsed form of one file's embedded test text. Stages is
// keyed by lower-cased stage name.
type Document struct {
	Stages   map[string]Stage
	IgnoreIf string
}

// Stage returns the stage for name, falling back to DefaultStage.
func (d *Document) Stage(name string) Stage {
	if d != nil {
		if st, ok := d.Stages[name]; ok {
			return st
		}
	}

	return DefaultStage(name)
}

// ExpectsSignal reports whether any stage expects signal termination.
func (d *Document) ExpectsSignal() bool {
	if d == nil {
		return false
	}

	for _, st := range d.Stages {
		if st.Status.Kind == StatusSignal {
			return true
		}

		if st.RerunIfStatus != nil && st.RerunIfStatus.Kind == StatusSignal {
			return true
		}
	}

	return false
}
