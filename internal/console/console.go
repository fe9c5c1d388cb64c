// Package console implements the hbnb command interpreter: a line loop that
// parses create/show/destroy/all/count/update commands, in either the
// space-separated or the Class.verb(args) form, against an object store.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"hbnb/internal/logging"
	"hbnb/internal/metrics"
	"hbnb/pkg/domain"
)

// Prompt is printed before each line when the session is interactive.
const Prompt = "(hbnb) "

// Status is the outcome of dispatching one line.
type Status int

const (
	// StatusOK means the line was recognised and handled, including lines
	// that produced a user-input error message.
	StatusOK Status = iota
	// StatusUnknown means the line matched no verb and no dotted form.
	StatusUnknown
	// StatusQuit means the session should end.
	StatusQuit
)

// Console is one interpreter session over a store.
type Console struct {
	store    domain.PersistentStore
	classes  *domain.Registry
	commands *Registry
	metrics  *metrics.Metrics
	out      io.Writer
	prompt   bool
}

// Option configures a Console.
type Option func(*Console)

// WithOutput sets where command output is written (default io.Discard).
func WithOutput(w io.Writer) Option { return func(c *Console) { c.out = w } }

// WithPrompt enables printing Prompt before every line.
func WithPrompt(enabled bool) Option { return func(c *Console) { c.prompt = enabled } }

// WithMetrics records executed verbs on m.
func WithMetrics(m *metrics.Metrics) Option { return func(c *Console) { c.metrics = m } }

// WithCommands replaces the built-in verb set.
func WithCommands(r *Registry) Option { return func(c *Console) { c.commands = r } }

// New returns a console over store. A nil registry means the seven hbnb classes.
func New(store domain.PersistentStore, classes *domain.Registry, opts ...Option) *Console {
	if classes == nil {
		classes = domain.DefaultRegistry()
	}
	c := &Console{
		store:    store,
		classes:  classes,
		commands: DefaultCommands(),
		out:      io.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the store the console operates on.
func (c *Console) Store() domain.PersistentStore { return c.store }

// Run reads lines from in until quit, EOF or ctx cancellation.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.prompt {
			fmt.Fprint(c.out, Prompt)
		}
		line, err := readLine(reader)
		if errors.Is(err, errLineTooLong) {
			c.report("input", err)
			continue
		}
		if err != nil {
			if c.prompt {
				fmt.Fprintln(c.out)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if c.Dispatch(ctx, line) == StatusQuit {
			return nil
		}
	}
}

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

var errLineTooLong = errors.New("input line too long")

// readLine returns the next line without its terminator. A line longer than
// maxLineBytes is consumed and reported as errLineTooLong.
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	overflow := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !overflow {
			line = append(line, chunk...)
			if len(line) > maxLineBytes+2 {
				overflow, line = true, nil
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err != nil && !errors.Is(err, io.EOF):
			return "", err
		case overflow:
			return "", errLineTooLong
		case err != nil && len(line) == 0:
			return "", err
		}
		text := strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
		if len(text) > maxLineBytes {
			return "", errLineTooLong
		}
		return text, nil
	}
}

// Dispatch executes a single line and reports how it was handled.
func (c *Console) Dispatch(ctx context.Context, line string) Status {
	line = strings.TrimSpace(line)
	if line == "" {
		return StatusOK
	}
	if strings.HasPrefix(line, "?") {
		line = "help " + line[1:]
	}
	name, rest := splitVerb(line)
	if cmd, ok := c.commands.Get(name); ok && name != "" {
		if !strings.HasPrefix(rest, ".") && !strings.HasPrefix(rest, "(") {
			args, err := splitWords(rest)
			if err != nil {
				c.report(name, err)
				return StatusOK
			}
			return c.execute(ctx, cmd, args)
		}
	}
	return c.dotted(ctx, line)
}

// splitVerb separates the leading identifier from the remainder of line.
func splitVerb(line string) (string, string) {
	i := 0
	for i < len(line) && isIdentChar(line[i]) {
		i++
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (c *Console) execute(ctx context.Context, cmd Command, args []Token) Status {
	err := cmd.Execute(ctx, c, args)
	if errors.Is(err, errQuitRequested) {
		c.metrics.ObserveCommand(cmd.Name(), metrics.OutcomeOK)
		return StatusQuit
	}
	c.report(cmd.Name(), err)
	return StatusOK
}

// report prints err the way the interpreter surfaces failures: user-input
// errors verbatim, anything else as "Error: <message>".
func (c *Console) report(verb string, err error) {
	switch {
	case err == nil:
		c.metrics.ObserveCommand(verb, metrics.OutcomeOK)
	case isUserError(err):
		c.metrics.ObserveCommand(verb, metrics.OutcomeUserError)
		fmt.Fprintln(c.out, err.Error())
	default:
		c.metrics.ObserveCommand(verb, metrics.OutcomeError)
		logging.WithFields(logging.Fields{
			"event": "command_failed",
			"verb":  verb,
		}).Debug(err)
		fmt.Fprintf(c.out, "Error: %s\n", err)
	}
}

func (c *Console) println(a ...any) { fmt.Fprintln(c.out, a...) }

var (
	dottedPattern = regexp.MustCompile(`^(\w+)\.(\w+)\((.*)\)$`)
	bracePattern  = regexp.MustCompile(`\{(.*?)\}`)
)

// dottedVerbs are the verbs reachable through Class.verb(args).
var dottedVerbs = map[string]bool{
	"all": true, "count": true, "show": true, "destroy": true, "update": true, "create": true,
}

// dotted handles Class.verb(args) lines by rewriting them into the
// space-separated argument list of the matching verb.
func (c *Console) dotted(ctx context.Context, line string) Status {
	m := dottedPattern.FindStringSubmatch(line)
	if m == nil || !dottedVerbs[m[2]] {
		c.println("*** Unknown syntax: " + line)
		return StatusUnknown
	}
	class, verb, args := m[1], m[2], m[3]
	cmd, ok := c.commands.Get(verb)
	if !ok {
		c.println("*** Unknown syntax: " + line)
		return StatusUnknown
	}
	classToken := Token{Text: class, Raw: class}

	if verb == "update" {
		if loc := bracePattern.FindStringSubmatchIndex(args); loc != nil {
			err := c.updateFromMapping(ctx, class, args[:loc[0]], "{"+args[loc[2]:loc[3]]+"}")
			c.report(verb, err)
			return StatusOK
		}
		tokens, err := updateArgs(args)
		if err != nil {
			c.report(verb, err)
			return StatusOK
		}
		return c.execute(ctx, cmd, append([]Token{classToken}, tokens...))
	}

	tokens, err := tokenize(args, ",")
	if err != nil {
		c.report(verb, err)
		return StatusOK
	}
	return c.execute(ctx, cmd, append([]Token{classToken}, tokens...))
}

// updateArgs splits "id, attr, value" on its first two commas; the value
// keeps any further commas.
func updateArgs(args string) ([]Token, error) {
	var tokens []Token
	for _, part := range strings.SplitN(args, ",", 3) {
		words, err := splitWords(part)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, words...)
	}
	return tokens, nil
}
