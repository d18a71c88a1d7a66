// Package model holds the plain data types shared by the parser, matcher,
// execution engine and reporters.
package model

// Path represents a file system path.
type Path string

// TestFile is a discovered test file. Path is absolute and canonicalised;
// Name is the display name derived from the path relative to the test root.
type TestFile struct {
	Path Path
	Name string
}

// Stream names one of a child's output streams.
type Stream string

// Output streams a matcher can be configured for.
const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)
