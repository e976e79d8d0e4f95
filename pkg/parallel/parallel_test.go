package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestMapOrderedPreservesOrder(t *testing.T) {
	got, err := MapOrdered(context.Background(), 100, 8, func(i int) (int, error) {
		return i * i, nil
	})
	if err != nil {
		t.Fatalf("MapOrdered: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("len = %d, want 100", len(got))
	}
	for i, v := range got {
		if v != i*i {
			t.Errorf("got[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestMapOrderedEmpty(t *testing.T) {
	got, err := MapOrdered(context.Background(), 0, 4, func(int) (int, error) { return 0, nil })
	if err != nil {
		t.Fatalf("MapOrdered: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestMapOrderedSingleWorker(t *testing.T) {
	var calls atomic.Int64
	got, err := MapOrdered(context.Background(), 10, 1, func(i int) (int, error) {
		calls.Add(1)
		return i, nil
	})
	if err != nil {
		t.Fatalf("MapOrdered: %v", err)
	}
	if len(got) != 10 || calls.Load() != 10 {
		t.Errorf("len=%d calls=%d, want 10/10", len(got), calls.Load())
	}
}

func TestMapOrderedStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	_, err := MapOrdered(context.Background(), 1000, 4, func(i int) (int, error) {
		if i == 5 {
			return 0, boom
		}
		return i, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestMapOrderedCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MapOrdered(ctx, 50, 4, func(i int) (int, error) { return i, nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMapOrderedDefaultWorkerCount(t *testing.T) {
	got, err := MapOrdered(context.Background(), 16, 0, func(i int) (int, error) { return i + 1, nil })
	if err != nil {
		t.Fatalf("MapOrdered: %v", err)
	}
	for i, v := range got {
		if v != i+1 {
			t.Errorf("got[%d] = %d", i, v)
		}
	}
}
