// Package parser turns the indentation based test description embedded in a
// test file into a model.Document.
//
// The format has two levels. Lines at the outer indentation name a stage
// (`Compiler:`) or set the document level `ignore-if` predicate. Lines indented
// further belong to the stage above them and are `key: value` pairs whose value
// may continue on following lines that are indented further than the key.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	m "langtest.dev/pkg/langtest/internal/model"
)

// Recognised keys.
const (
	keyIgnoreIf      = "ignore-if"
	keyStatus        = "status"
	keyStdout        = "stdout"
	keyStderr        = "stderr"
	keyStdin         = "stdin"
	keyEnv           = "env"
	keyEnvVar        = "env-var"
	keyExecArg       = "exec-arg"
	keyRerunIfStatus = "rerun-if-status"
	keyRerunIfStdout = "rerun-if-stdout"
	keyRerunIfStderr = "rerun-if-stderr"
)

// Options tunes parsing.
type Options struct {
	// CommentPrefix, when set, marks lines to skip wherever a stage header or
	// a key is expected.
	CommentPrefix string
}

// Error is returned for malformed test text. Line is one based.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errorf(line int, format string, args ...interface{}) *Error {
	return &Error{Line: line + 1, Msg: fmt.Sprintf(format, args...)}
}

type parser struct {
	lines []string
	opts  Options
}

// Parse parses text into a Document.
func Parse(text string, opts Options) (*m.Document, error) {
	p := &parser{lines: splitLines(text), opts: opts}

	return p.document()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

func (p *parser) document() (*m.Document, error) {
	doc := &m.Document{Stages: map[string]m.Stage{}}
	off := 0

	for off < len(p.lines) {
		if p.skippable(off) {
			off++
			continue
		}

		indent := indentOf(p.lines[off])

		key, val, err := p.keyVal(off, indent)
		if err != nil {
			return nil, err
		}

		if strings.EqualFold(key, keyIgnoreIf) {
			doc.IgnoreIf = val
			off++

			continue
		}

		if val != "" {
			return nil, errorf(off, "stage name '%s' can't have a value", key)
		}

		name := strings.ToLower(key)
		if _, ok := doc.Stages[name]; ok {
			return nil, errorf(off, "stage name '%s' is specified more than once", key)
		}

		stage, next, err := p.stage(key, off+1, indent)
		if err != nil {
			return nil, err
		}

		doc.Stages[name] = stage
		off = next
	}

	return doc, nil
}

// stage parses the keys belonging to the header at headerIndent and returns
// the offset of the first line that no longer belongs to it.
func (p *parser) stage(name string, off, headerIndent int) (m.Stage, int, error) {
	stage := m.DefaultStage(name)

	for off < len(p.lines) {
		if p.skippable(off) {
			off++
			continue
		}

		indent := indentOf(p.lines[off])
		if indent <= headerIndent {
			break
		}

		start := off

		key, val, next, err := p.keyMultilineVal(off, indent)
		if err != nil {
			return stage, 0, err
		}

		off = next

		if err := applyKey(&stage, key, val, start); err != nil {
			return stage, 0, err
		}
	}

	return stage, off, nil
}

func applyKey(stage *m.Stage, key string, val []string, line int) error {
	if len(val) == 0 && knownKey(key) {
		return errorf(line, "key '%s' without value", key)
	}

	switch key {
	case keyStatus, keyRerunIfStatus:
		status, err := ParseStatus(strings.Join(val, "\n"))
		if err != nil {
			return errorf(line, "%v", err)
		}

		if key == keyStatus {
			stage.Status = status
		} else {
			stage.RerunIfStatus = &status
		}
	case keyStdout:
		stage.Stdout = val
	case keyStderr:
		stage.Stderr = val
	case keyRerunIfStdout:
		stage.RerunIfStdout = val
	case keyRerunIfStderr:
		stage.RerunIfStderr = val
	case keyStdin:
		stdin := strings.Join(val, "\n")
		stage.Stdin = &stdin
	case keyEnv, keyEnvVar:
		raw := strings.Join(val, "\n")

		k, v, ok := strings.Cut(raw, "=")
		if !ok {
			return errorf(line, "environment variable '%s' is not of the form key=value", raw)
		}

		k = strings.TrimSpace(k)
		if k == "" {
			return errorf(line, "environment variable '%s' has an empty key", raw)
		}

		stage.Env[k] = strings.TrimSpace(v)
	case keyExecArg:
		stage.Args = append(stage.Args, strings.Join(val, "\n"))
	default:
		return errorf(line, "unknown key '%s'", key)
	}

	return nil
}

func knownKey(key string) bool {
	switch key {
	case keyStatus, keyStdout, keyStderr, keyStdin, keyEnv, keyEnvVar, keyExecArg,
		keyRerunIfStatus, keyRerunIfStdout, keyRerunIfStderr:
		return true
	}

	return false
}

// ParseStatus parses a status token: success, error, signal (any case) or an
// integer exit code.
func ParseStatus(s string) (m.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return m.Success, nil
	case "error":
		return m.Status{Kind: m.StatusError}, nil
	case "signal":
		return m.Status{Kind: m.StatusSignal}, nil
	}

	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return m.Status{}, fmt.Errorf("unknown status '%s'", s)
	}

	return m.ExitCode(code), nil
}

// keyVal splits the line at off into its key and its trimmed single line value.
func (p *parser) keyVal(off, indent int) (string, string, error) {
	line := p.lines[off]
	rest := line[indent:]

	keyLen := strings.IndexFunc(rest, func(r rune) bool {
		return unicode.IsSpace(r) || r == ':'
	})
	if keyLen < 0 {
		keyLen = len(rest)
	}

	key := rest[:keyLen]
	rest = strings.TrimLeftFunc(rest[keyLen:], unicode.IsSpace)

	if key == "" || !strings.HasPrefix(rest, ":") {
		return "", "", errorf(off, "invalid key terminator:\n  %s", line)
	}

	return key, strings.TrimSpace(rest[1:]), nil
}

// keyMultilineVal parses a key whose value may spread over the following
// lines. Continuation lines keep everything but the indentation of the first
// continuation line; leading and trailing blank entries are dropped.
func (p *parser) keyMultilineVal(off, indent int) (string, []string, int, error) {
	key, first, err := p.keyVal(off, indent)
	if err != nil {
		return "", nil, 0, err
	}

	off++
	val := []string{first}
	contIndent := -1

	for off < len(p.lines) {
		line := p.lines[off]
		cur := indentOf(line)

		if cur == len(line) {
			val = append(val, "")
			off++

			continue
		}

		if cur <= indent {
			break
		}

		if contIndent < 0 {
			contIndent = cur
		}

		val = append(val, line[min(cur, contIndent):])
		off++
	}

	return key, trimBlank(val), off, nil
}

func trimBlank(val []string) []string {
	start := 0
	for start < len(val) && val[start] == "" {
		start++
	}

	end := len(val)
	for end > start && val[end-1] == "" {
		end--
	}

	out := make([]string, end-start)
	copy(out, val[start:end])

	return out
}

func (p *parser) skippable(off int) bool {
	line := p.lines[off]
	if indentOf(line) == len(line) {
		return true
	}

	return p.opts.CommentPrefix != "" &&
		strings.HasPrefix(strings.TrimSpace(line), p.opts.CommentPrefix)
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
}
