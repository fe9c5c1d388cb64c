package console

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Command is one interpreter verb.
type Command interface {
	Name() string        // verb typed at the prompt, e.g. "show"
	Description() string // one-line summary for help
	Usage() string
	// Execute runs the verb. args holds the words after the verb.
	Execute(ctx context.Context, c *Console, args []Token) error
}

// Registry holds the registered verbs.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := cmd.Name()
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command '%s' already registered", name)
	}
	r.commands[name] = cmd
	return nil
}

// Get returns a command by its name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[name]
	return cmd, exists
}

// All returns every registered command sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

// DefaultCommands returns a registry with every built-in verb.
func DefaultCommands() *Registry {
	r := NewRegistry()
	for _, cmd := range []Command{
		createCmd{}, showCmd{}, destroyCmd{}, allCmd{}, countCmd{}, updateCmd{},
		helpCmd{}, quitCmd{name: "quit"}, quitCmd{name: "EOF"},
	} {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
	return r
}
