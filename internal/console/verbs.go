package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"hbnb/pkg/domain"
)

// lookupClass validates the class word shared by most verbs.
func (c *Console) lookupClass(args []Token) (domain.Class, error) {
	if len(args) == 0 {
		return "", errClassMissing
	}
	class, ok := c.classes.Lookup(args[0].Text)
	if !ok {
		return "", errClassUnknown
	}
	return class, nil
}

// lookupInstance resolves "<class> <id>" to a stored record.
func (c *Console) lookupInstance(args []Token) (string, domain.Model, error) {
	class, err := c.lookupClass(args)
	if err != nil {
		return "", nil, err
	}
	if len(args) < 2 {
		return "", nil, errIDMissing
	}
	key := domain.KeyFor(class, args[1].Text)
	obj, ok := c.store.Get(key)
	if !ok {
		return "", nil, errNoInstance
	}
	return key, obj, nil
}

type createCmd struct{}

func (createCmd) Name() string        { return "create" }
func (createCmd) Description() string { return "Create an instance, save it and print its id." }
func (createCmd) Usage() string {
	return "create <class_name> [<attribute>=<value> ...]"
}

// Execute builds the record from key=value words. Words that are not a
// single key=value pair, and values the field cannot hold, are skipped.
func (createCmd) Execute(ctx context.Context, c *Console, args []Token) error {
	class, err := c.lookupClass(args)
	if err != nil {
		return err
	}
	obj, err := c.classes.Instantiate(class)
	if err != nil {
		return err
	}
	for _, tok := range args[1:] {
		if strings.Count(tok.Text, "=") != 1 {
			continue
		}
		key, text, _ := strings.Cut(tok.Text, "=")
		_, raw, _ := strings.Cut(tok.Raw, "=")
		if key == "" {
			continue
		}
		// Values a fixed field cannot hold are skipped like malformed params.
		_ = domain.Set(obj, key, parameterValue(text, raw))
	}
	c.store.New(obj)
	if err := c.store.Save(ctx); err != nil {
		return err
	}
	c.println(obj.Record().ID)
	return nil
}

// parameterValue interprets one create parameter. A double-quoted value is
// text with underscores standing for spaces; anything else is a literal when
// it parses as one and text otherwise.
func parameterValue(text, raw string) any {
	if strings.HasPrefix(raw, `"`) {
		return strings.ReplaceAll(text, "_", " ")
	}
	if v, err := ParseLiteral(raw); err == nil {
		return v.Native()
	}
	return text
}

type showCmd struct{}

func (showCmd) Name() string        { return "show" }
func (showCmd) Description() string { return "Print the string form of an instance." }
func (showCmd) Usage() string       { return "show <class_name> <id>" }

func (showCmd) Execute(_ context.Context, c *Console, args []Token) error {
	_, obj, err := c.lookupInstance(args)
	if err != nil {
		return err
	}
	c.println(domain.String(obj))
	return nil
}

type destroyCmd struct{}

func (destroyCmd) Name() string        { return "destroy" }
func (destroyCmd) Description() string { return "Delete an instance and save the change." }
func (destroyCmd) Usage() string       { return "destroy <class_name> <id>" }

func (destroyCmd) Execute(ctx context.Context, c *Console, args []Token) error {
	key, _, err := c.lookupInstance(args)
	if err != nil {
		return err
	}
	c.store.Delete(key)
	return c.store.Save(ctx)
}

type allCmd struct{}

func (allCmd) Name() string        { return "all" }
func (allCmd) Description() string { return "Print every instance, optionally of one class." }
func (allCmd) Usage() string       { return "all [class_name]" }

func (allCmd) Execute(_ context.Context, c *Console, args []Token) error {
	var filter domain.Class
	if len(args) > 0 {
		class, err := c.lookupClass(args)
		if err != nil {
			return err
		}
		filter = class
	}
	objects := c.store.All()
	keys := make([]string, 0, len(objects))
	for key, obj := range objects {
		if filter == "" || obj.Class() == filter {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		c.println(domain.String(objects[key]))
	}
	return nil
}

type countCmd struct{}

func (countCmd) Name() string        { return "count" }
func (countCmd) Description() string { return "Print the number of instances of a class." }
func (countCmd) Usage() string       { return "count <class_name>" }

// Execute counts records by runtime class. Unknown class names count 0.
func (countCmd) Execute(_ context.Context, c *Console, args []Token) error {
	if len(args) == 0 {
		return errClassMissing
	}
	name := domain.Class(args[0].Text)
	n := 0
	for _, obj := range c.store.All() {
		if obj.Class() == name {
			n++
		}
	}
	c.println(n)
	return nil
}

type updateCmd struct{}

func (updateCmd) Name() string        { return "update" }
func (updateCmd) Description() string { return "Set one attribute of an instance and save it." }
func (updateCmd) Usage() string {
	return `update <class_name> <id> <attribute_name> "<attribute_value>"`
}

func (updateCmd) Execute(ctx context.Context, c *Console, args []Token) error {
	if len(args) < 4 {
		return errUpdateUsage
	}
	obj, ok := c.store.Get(args[0].Text + "." + args[1].Text)
	if !ok {
		return errNoInstance
	}
	return c.applyUpdate(ctx, obj, args[2].Text, attributeValue(args[3:]))
}

// attributeValue interprets the value words of an update. A double-quoted
// value is text with underscores standing for spaces; otherwise the words
// are read as a literal, falling back to the unquoted text.
func attributeValue(words []Token) any {
	if len(words) == 1 && strings.HasPrefix(words[0].Raw, `"`) && words[0].Quoted {
		return strings.ReplaceAll(words[0].Text, "_", " ")
	}
	if v, err := ParseLiteral(joinRaw(words)); err == nil {
		return v.Native()
	}
	return Coerce(joinText(words)).Native()
}

// applyUpdate sets one attribute, refreshes updated_at and saves the table.
func (c *Console) applyUpdate(ctx context.Context, obj domain.Model, attr string, value any) error {
	if err := domain.Set(obj, attr, value); err != nil {
		return err
	}
	domain.Touch(obj, c.classes.Now())
	return c.store.Save(ctx)
}

// updateFromMapping applies Class.update(id, {...}) one attribute at a time.
// String values are literals, so underscores are kept as written.
func (c *Console) updateFromMapping(ctx context.Context, class, prefix, mapping string) error {
	ids, err := tokenize(prefix, ",")
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errIDMissing
	}
	literal, err := ParseLiteral(mapping)
	if err != nil {
		return err
	}
	if literal.Kind != KindMap {
		return errors.New("update attributes must be a mapping")
	}
	obj, ok := c.store.Get(class + "." + ids[0].Text)
	if !ok {
		return errNoInstance
	}
	for _, pair := range literal.Pairs {
		if err := c.applyUpdate(ctx, obj, pair.Key.keyString(), pair.Value.Native()); err != nil {
			return err
		}
	}
	return nil
}

type helpCmd struct{}

func (helpCmd) Name() string        { return "help" }
func (helpCmd) Description() string { return "List commands or show the usage of one." }
func (helpCmd) Usage() string       { return "help [command]" }

func (helpCmd) Execute(_ context.Context, c *Console, args []Token) error {
	if len(args) > 0 {
		cmd, ok := c.commands.Get(args[0].Text)
		if !ok {
			c.println(fmt.Sprintf("*** No help on %s", args[0].Text))
			return nil
		}
		c.println(cmd.Description())
		c.println("Usage: " + cmd.Usage())
		return nil
	}
	c.println("Documented commands (type help <topic>):")
	c.println("========================================")
	names := make([]string, 0)
	for _, cmd := range c.commands.All() {
		names = append(names, cmd.Name())
	}
	c.println(strings.Join(names, "  "))
	c.println()
	return nil
}

type quitCmd struct{ name string }

func (q quitCmd) Name() string      { return q.name }
func (quitCmd) Description() string { return "Exit the console." }
func (q quitCmd) Usage() string     { return q.name }

func (quitCmd) Execute(context.Context, *Console, []Token) error { return errQuitRequested }
