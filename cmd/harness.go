package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/viper"
	"langtest.dev/pkg/langtest/internal/adapter"
	"langtest.dev/pkg/langtest/internal/domain"
	"langtest.dev/pkg/langtest/internal/fuzzy"
	m "langtest.dev/pkg/langtest/internal/model"
)

// commandConfig is one entry of the commands list. Every string field is a
// text/template rendered against commandData. Env entries are KEY=VALUE so
// variable names keep their case.
type commandConfig struct {
	Name string   `mapstructure:"name"`
	Cmd  string   `mapstructure:"cmd"`
	Args []string `mapstructure:"args"`
	Env  []string `mapstructure:"env"`
	Dir  string   `mapstructure:"dir"`
}

type nameMatcherConfig struct {
	Pattern string   `mapstructure:"pattern"`
	Text    string   `mapstructure:"text"`
	Streams []string `mapstructure:"streams"`
}

// harnessSettings is everything the configuration file says about how to
// find, read and run tests.
type harnessSettings struct {
	TestDir       string
	Extensions    []string
	ExtractPrefix string
	CommentPrefix string
	Commands      []commandConfig

	IgnoreLeadingWhitespace bool
	NameMatchers            []nameMatcherConfig

	Parallel    int
	RerunAtMost int
	Timeout     time.Duration
	WarnAfter   time.Duration
	ReportDir   string
}

func loadHarnessSettings() (harnessSettings, error) {
	s := harnessSettings{
		TestDir:                 viper.GetString(testDirKey),
		Extensions:              viper.GetStringSlice(extensionsKey),
		ExtractPrefix:           viper.GetString(extractPrefixKey),
		CommentPrefix:           viper.GetString(commentPrefixKey),
		IgnoreLeadingWhitespace: viper.GetBool(matcherIgnoreLeadingWhitespaceKey),
		Parallel:                viper.GetInt(runParallelKey),
		RerunAtMost:             viper.GetInt(runRerunAtMostKey),
		Timeout:                 time.Duration(viper.GetInt64(runTimeoutKey)) * time.Second,
		WarnAfter:               time.Duration(viper.GetInt64(runWarnAfterKey)) * time.Second,
		ReportDir:               viper.GetString(reportDirKey),
	}

	if err := viper.UnmarshalKey(commandsKey, &s.Commands); err != nil {
		return s, fmt.Errorf("%s: %w", commandsKey, err)
	}

	if err := viper.UnmarshalKey(matcherNameMatchersKey, &s.NameMatchers); err != nil {
		return s, fmt.Errorf("%s: %w", matcherNameMatchersKey, err)
	}

	return s, nil
}

// commandData is what command templates can refer to.
type commandData struct {
	Path    string
	Dir     string
	Base    string
	Stem    string
	Name    string
	TempDir string
}

func newCommandData(path m.Path, stage string, tempDir m.Path) commandData {
	p := string(path)
	base := filepath.Base(p)

	return commandData{
		Path:    p,
		Dir:     filepath.Dir(p),
		Base:    base,
		Stem:    strings.TrimSuffix(base, filepath.Ext(base)),
		Name:    stage,
		TempDir: string(tempDir),
	}
}

type commandTemplate struct {
	name string
	cmd  *template.Template
	args []*template.Template
	env  map[string]*template.Template
	dir  *template.Template
}

func compileCommand(i int, c commandConfig) (commandTemplate, error) {
	if strings.TrimSpace(c.Name) == "" {
		return commandTemplate{}, fmt.Errorf("commands[%d]: name is required", i)
	}

	if strings.TrimSpace(c.Cmd) == "" {
		return commandTemplate{}, fmt.Errorf("commands[%d] (%s): cmd is required", i, c.Name)
	}

	parse := func(field, text string) (*template.Template, error) {
		t, err := template.New(field).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("commands[%d] (%s) %s: %w", i, c.Name, field, err)
		}

		return t, nil
	}

	ct := commandTemplate{name: c.Name, env: make(map[string]*template.Template, len(c.Env))}

	var err error

	if ct.cmd, err = parse("cmd", c.Cmd); err != nil {
		return ct, err
	}

	if ct.dir, err = parse("dir", c.Dir); err != nil {
		return ct, err
	}

	for j, a := range c.Args {
		t, err := parse(fmt.Sprintf("args[%d]", j), a)
		if err != nil {
			return ct, err
		}

		ct.args = append(ct.args, t)
	}

	for _, kv := range c.Env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return ct, fmt.Errorf("commands[%d] (%s) env %q is not of the form KEY=VALUE", i, c.Name, kv)
		}

		k = strings.TrimSpace(k)

		t, err := parse("env."+k, v)
		if err != nil {
			return ct, err
		}

		ct.env[k] = t
	}

	return ct, nil
}

func (ct commandTemplate) render(data commandData) (m.StageCommand, error) {
	exec := func(t *template.Template) (string, error) {
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return "", err
		}

		return buf.String(), nil
	}

	cmd := m.Command{Env: make(map[string]string, len(ct.env))}

	var err error

	if cmd.Path, err = exec(ct.cmd); err != nil {
		return m.StageCommand{}, err
	}

	if cmd.Dir, err = exec(ct.dir); err != nil {
		return m.StageCommand{}, err
	}

	for _, t := range ct.args {
		a, err := exec(t)
		if err != nil {
			return m.StageCommand{}, err
		}

		cmd.Args = append(cmd.Args, a)
	}

	for k, t := range ct.env {
		v, err := exec(t)
		if err != nil {
			return m.StageCommand{}, err
		}

		cmd.Env[k] = v
	}

	return m.StageCommand{Name: ct.name, Command: cmd}, nil
}

// buildConfig turns settings into the engine's configuration. tempDir is
// exposed to command templates as .TempDir.
func buildConfig(s harnessSettings, fs adapter.SourceFSAdapter, tempDir m.Path) (domain.Config, error) {
	if len(s.Commands) == 0 {
		return domain.Config{}, fmt.Errorf("%s: at least one command is required", commandsKey)
	}

	templates := make([]commandTemplate, 0, len(s.Commands))

	for i, c := range s.Commands {
		ct, err := compileCommand(i, c)
		if err != nil {
			return domain.Config{}, err
		}

		templates = append(templates, ct)
	}

	matchOptions, err := buildMatchOptions(s)
	if err != nil {
		return domain.Config{}, err
	}

	prefix := s.ExtractPrefix

	return domain.Config{
		TestDir: m.Path(s.TestDir),
		Filter:  extensionFilter(s.Extensions),
		Extract: func(path m.Path) (string, error) {
			data, err := fs.ReadFile(path)
			if err != nil {
				return "", err
			}

			return domain.ExtractLeadingComments(string(data), prefix), nil
		},
		Commands: func(path m.Path) ([]m.StageCommand, error) {
			cmds := make([]m.StageCommand, 0, len(templates))

			for _, ct := range templates {
				sc, err := ct.render(newCommandData(path, ct.name, tempDir))
				if err != nil {
					return nil, fmt.Errorf("render %s command: %w", ct.name, err)
				}

				cmds = append(cmds, sc)
			}

			return cmds, nil
		},
		MatchOptions:  matchOptions,
		CommentPrefix: s.CommentPrefix,
		Parallel:      s.Parallel,
		RerunAtMost:   s.RerunAtMost,
		WarnAfter:     s.WarnAfter,
		Timeout:       s.Timeout,
		ReportDir:     m.Path(s.ReportDir),
	}, nil
}

// extensionFilter accepts files with one of exts, with or without the
// leading dot. An empty list accepts everything.
func extensionFilter(exts []string) domain.TestFilter {
	if len(exts) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(exts))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		normalized = append(normalized, e)
	}

	return func(path m.Path) bool {
		return slices.Contains(normalized, filepath.Ext(string(path)))
	}
}

func buildMatchOptions(s harnessSettings) (domain.MatchOptions, error) {
	perStream := make(map[m.Stream]*fuzzy.NameMatcher)

	for i, nm := range s.NameMatchers {
		pattern, err := regexp.Compile(nm.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] pattern: %w", matcherNameMatchersKey, i, err)
		}

		text, err := regexp.Compile(nm.Text)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] text: %w", matcherNameMatchersKey, i, err)
		}

		streams := nm.Streams
		if len(streams) == 0 {
			streams = []string{string(m.Stdout), string(m.Stderr)}
		}

		for _, name := range streams {
			stream := m.Stream(strings.ToLower(strings.TrimSpace(name)))
			if stream != m.Stdout && stream != m.Stderr {
				return nil, fmt.Errorf("%s[%d]: unknown stream %q", matcherNameMatchersKey, i, name)
			}

			perStream[stream] = &fuzzy.NameMatcher{Pattern: pattern, Text: text}
		}
	}

	ignoreLeading := s.IgnoreLeadingWhitespace

	return func(_ m.Path, stream m.Stream) fuzzy.Options {
		return fuzzy.Options{
			IgnoreLeadingWhitespace: ignoreLeading,
			NameMatcher:             perStream[stream],
		}
	}, nil
}
