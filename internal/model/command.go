package model

// Command is a spawn specification for one child process.
type Command struct {
	Path string
	Args []string
	Env  map[string]string
	Dir  string
}

// With returns a copy of c with extra arguments appended and env merged on
// top of the existing variables.
func (c Command) With(args []string, env map[string]string) Command {
	out := Command{
		Path: c.Path,
		Dir:  c.Dir,
		Args: make([]string, 0, len(c.Args)+len(args)),
		Env:  make(map[string]string, len(c.Env)+len(env)),
	}

	out.Args = append(out.Args, c.Args...)
	out.Args = append(out.Args, args...)

	for k, v := range c.Env {
		out.Env[k] = v
	}

	for k, v := range env {
		out.Env[k] = v
	}

	return out
}

// StageCommand pairs a stage name with the command that executes it.
type StageCommand struct {
	Name    string
	Command Command
}
