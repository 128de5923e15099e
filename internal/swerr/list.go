package swerr

import (
	"errors"
	"fmt"
	"strings"
)

// List is a list of errors that share the same kind.
//
// errors.Is on a List matches What, and also matches each child.
// So a List of config problems is still a statwatch.ErrInvalidConfig, and it tells which child caused it.
type List struct {
	What     error
	Children []error
}

func (l List) Error() string {
	ss := make([]string, 0, len(l.Children)+1)
	ss = append(ss, l.What.Error()+":")

	for _, e := range l.Children {
		for _, s := range strings.Split(e.Error(), "\n") {
			ss = append(ss, "  "+s)
		}
	}

	return strings.Join(ss, "\n")
}

// Unwrap returns What.
func (l List) Unwrap() error {
	return l.What
}

// Is reports err is What or any of children.
func (l List) Is(err error) bool {
	if l.What == err {
		return true
	}
	for _, e := range l.Children {
		if errors.Is(e, err) {
			return true
		}
	}
	return false
}

// ListBuilder collects errors and builds a List.
type ListBuilder struct {
	What     error
	Children []error
}

// Push appends errors as children. Nil errors are ignored.
func (lb *ListBuilder) Push(errs ...error) {
	for _, e := range errs {
		if e != nil {
			lb.Children = append(lb.Children, e)
		}
	}
}

// Pushf appends a new error as a child.
func (lb *ListBuilder) Pushf(format string, values ...interface{}) {
	lb.Push(fmt.Errorf(format, values...))
}

// Build returns nil if no child, otherwise returns List.
func (lb *ListBuilder) Build() error {
	if len(lb.Children) == 0 {
		return nil
	}

	return List{
		What:     lb.What,
		Children: lb.Children,
	}
}
