package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func TestWriter_SerialisesJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWriter(4, zerolog.Nop())
	w.Start(context.Background())
	defer w.Stop()

	var (
		counter  int
		inFlight int
		maxSeen  int
		wg       sync.WaitGroup
		mu       sync.Mutex
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := w.Do(context.Background(), func(context.Context) error {
				mu.Lock()
				inFlight++
				if inFlight > maxSeen {
					maxSeen = inFlight
				}
				mu.Unlock()

				// unsynchronised read-modify-write: safe only if jobs never overlap
				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("Do returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("expected 50 increments, got %d", counter)
	}
	if maxSeen != 1 {
		t.Fatalf("expected at most one job in flight, saw %d", maxSeen)
	}
}

func TestWriter_ReturnsJobError(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWriter(1, zerolog.Nop())
	w.Start(context.Background())
	defer w.Stop()

	want := errors.New("boom")
	if err := w.Do(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestWriter_RecoversPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWriter(1, zerolog.Nop())
	w.Start(context.Background())
	defer w.Stop()

	err := w.Do(context.Background(), func(context.Context) error { panic("bad job") })
	if err == nil {
		t.Fatalf("expected error from panicking job")
	}

	if err := w.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("writer should survive a panic, got %v", err)
	}
}

func TestWriter_StoppedRejects(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWriter(1, zerolog.Nop())
	w.Start(context.Background())
	w.Stop()

	called := false
	err := w.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrWriterStopped) {
		t.Fatalf("expected ErrWriterStopped, got %v", err)
	}
	if called {
		t.Fatalf("job must not run after stop")
	}
}

func TestWriter_ContextCancelStopsWriter(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWriter(1, zerolog.Nop())
	w.Start(ctx)
	cancel()
	w.Stop()

	if err := w.Do(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrWriterStopped) {
		t.Fatalf("expected ErrWriterStopped, got %v", err)
	}
}

func TestWriter_CancelledCallerContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWriter(1, zerolog.Nop())
	w.Start(context.Background())
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := w.Do(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatalf("job with cancelled context must not run")
	}
}

func TestWriter_NotStartedRejects(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWriter(1, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		done <- w.Do(context.Background(), func(context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrWriterStopped) {
			t.Fatalf("expected ErrWriterStopped, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do blocked on a writer that was never started")
	}
}
