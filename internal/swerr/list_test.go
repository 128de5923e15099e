package swerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
)

func TestList_Is(t *testing.T) {
	errA := errors.New("error A")
	errB := errors.New("error B")
	errC := errors.New("error C")

	listAB := swerr.List{What: errA, Children: []error{errB}}
	listKind := swerr.List{What: errA, Children: []error{swerr.New(api.ErrFetch, errC, "wrapped")}}

	tests := []struct {
		List  error
		Error error
		Want  bool
	}{
		{listAB, errA, true},
		{listAB, errB, true},
		{listAB, errC, false},
		{listKind, api.ErrFetch, true},
		{listKind, errC, true},
		{listKind, api.ErrParse, false},
	}

	for i, tt := range tests {
		if actual := errors.Is(tt.List, tt.Error); actual != tt.Want {
			t.Errorf("%d: expected %v but got %v", i, tt.Want, actual)
		}
	}
}

func TestListBuilder_Push(t *testing.T) {
	e := &swerr.ListBuilder{What: api.ErrInvalidConfig}

	e.Push(nil, nil)
	if err := e.Build(); err != nil {
		t.Fatalf("nil errors should be ignored: %s", err)
	}

	e.Push(errors.New("A is wrong"), nil)
	if err := e.Build(); err == nil || len(err.(swerr.List).Children) != 1 {
		t.Errorf("unexpected result: %#v", err)
	}
}

func ExampleListBuilder() {
	// prepare builder with the kind of errors.
	e := &swerr.ListBuilder{What: api.ErrInvalidConfig}

	// e.Build() returns nil because builder has no child error yet.
	fmt.Println("--- before push errors ---")
	fmt.Println(e.Build())
	fmt.Println()

	e.Push(errors.New("url: must not be empty"))
	e.Pushf("port: must be between 0 and 65535 but got %d", 70000)

	fmt.Println("--- after push errors ---")
	fmt.Println(e.Build())

	// OUTPUT:
	// --- before push errors ---
	// <nil>
	//
	// --- after push errors ---
	// invalid configuration:
	//   url: must not be empty
	//   port: must be between 0 and 65535 but got 70000
}
