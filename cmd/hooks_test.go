package cmd

import (
	"errors"
	"testing"
	"time"
)

func TestDoneCompletion(t *testing.T) {
	if err := Done(nil).Wait(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	want := errors.New("boom")
	if err := Done(want).Wait(); err != want {
		t.Errorf("Expected %v, got %v", want, err)
	}
}

func TestFromChannelCompletion(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		time.Sleep(5 * time.Millisecond)
		done <- nil
	}()
	if err := FromChannel(done).Wait(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestRunHookChainSequencesCompletions(t *testing.T) {
	var order []int
	hooks := []HookHandler{
		func(thisCommand, actionCommand *Command) Completion {
			done := make(chan error, 1)
			go func() {
				time.Sleep(5 * time.Millisecond)
				order = append(order, 1)
				done <- nil
			}()
			return FromChannel(done)
		},
		func(thisCommand, actionCommand *Command) Completion {
			order = append(order, 2)
			return nil
		},
	}

	if err := runHookChain(hooks, nil, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("Expected strictly sequential execution, got %v", order)
	}
}

func TestRunHookChainStopsOnError(t *testing.T) {
	ran := false
	hooks := []HookHandler{
		func(thisCommand, actionCommand *Command) Completion {
			return Done(errors.New("first failed"))
		},
		func(thisCommand, actionCommand *Command) Completion {
			ran = true
			return nil
		},
	}

	if err := runHookChain(hooks, nil, nil); err == nil {
		t.Fatal("Expected the first hook's error")
	}
	if ran {
		t.Error("Expected the chain to stop at the failing hook")
	}
}

func TestInvalidHookEventPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an invalid hook event name")
		}
	}()
	NewCommand("prog").Hook("preParse", func(thisCommand, actionCommand *Command) Completion {
		return nil
	})
}
