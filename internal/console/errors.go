package console

import "errors"

// userError is an input problem reported with a fixed message.
type userError string

func (e userError) Error() string { return string(e) }

const (
	errClassMissing  userError = "** class name missing **"
	errClassUnknown  userError = "** class doesn't exist **"
	errIDMissing     userError = "** instance id missing **"
	errNoInstance    userError = "** no instance found **"
	errUpdateUsage   userError = "** Usage: update <class_name> <id> <attribute_name> '<attribute_value>' **"
	errQuitRequested sentinel  = "quit"
)

type sentinel string

func (s sentinel) Error() string { return string(s) }

func isUserError(err error) bool {
	var ue userError
	return errors.As(err, &ue)
}
