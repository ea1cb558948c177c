package core

import (
	"sync"
	"testing"
)

func TestGo_RunsFunction(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	ran := false
	Go(func() {
		defer wg.Done()
		ran = true
	})
	wg.Wait()
	if !ran {
		t.Errorf("Expected function to run")
	}
}

func TestHandleCrash_NilIsNoop(t *testing.T) {
	called := false
	SetCrashCleanup(func() { called = true })
	defer SetCrashCleanup(nil)

	HandleCrash(nil)
	if called {
		t.Errorf("Expected cleanup untouched without a panic value")
	}
}
