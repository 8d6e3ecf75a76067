package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

type storageFactory struct {
	name string
	new  func(t *testing.T) (Storage, func())
}

func TestStorageContract(t *testing.T) {
	factories := []storageFactory{
		{
			name: "memory",
			new: func(t *testing.T) (Storage, func()) {
				t.Helper()
				s := NewMemoryStorage()
				return s, func() { _ = s.Close() }
			},
		},
		{
			name: "redis",
			new: func(t *testing.T) (Storage, func()) {
				t.Helper()
				s, cleanup := newRedisStorageForTest(t)
				return s, cleanup
			},
		},
	}

	for _, f := range factories {
		t.Run(f.name, func(t *testing.T) {
			store, cleanup := f.new(t)
			defer cleanup()

			contractIncrement(t, store)
			contractSetIfNewer(t, store)
			contractDelete(t, store)
			contractConcurrentIncrement(t, store)
		})
	}
}

func contractIncrement(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	key := "contract-increment"

	for want := int64(1); want <= 3; want++ {
		got, err := s.Increment(ctx, key, 1)
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if got != want {
			t.Fatalf("Increment() = %d, want %d", got, want)
		}
	}
}

func contractSetIfNewer(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	key := "contract-set-if-newer"

	val, version, err := s.GetVersioned(ctx, key)
	if err != nil {
		t.Fatalf("GetVersioned() on missing key error = %v", err)
	}
	if val != nil || version != 0 {
		t.Fatalf("missing key = (%q, %d), want (nil, 0)", val, version)
	}

	ok, err := s.SetIfNewer(ctx, key, 2, []byte("second"))
	if err != nil || !ok {
		t.Fatalf("SetIfNewer(v2) = %v, %v; want true, nil", ok, err)
	}

	ok, err = s.SetIfNewer(ctx, key, 1, []byte("first"))
	if err != nil {
		t.Fatalf("SetIfNewer(v1) error = %v", err)
	}
	if ok {
		t.Fatal("older version should not overwrite a newer one")
	}

	ok, err = s.SetIfNewer(ctx, key, 2, []byte("second-again"))
	if err != nil || !ok {
		t.Fatalf("SetIfNewer(same version) = %v, %v; want true, nil", ok, err)
	}

	val, version, err = s.GetVersioned(ctx, key)
	if err != nil {
		t.Fatalf("GetVersioned() error = %v", err)
	}
	if string(val) != "second-again" || version != 2 {
		t.Fatalf("GetVersioned() = (%q, %d), want (second-again, 2)", val, version)
	}
}

func contractDelete(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	key := "contract-delete"

	if _, err := s.SetIfNewer(ctx, key, 1, []byte("x")); err != nil {
		t.Fatalf("SetIfNewer() error = %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	val, _, err := s.GetVersioned(ctx, key)
	if err != nil {
		t.Fatalf("GetVersioned() error = %v", err)
	}
	if val != nil {
		t.Fatalf("value after delete = %q, want nil", val)
	}
}

func contractConcurrentIncrement(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	key := "contract-concurrent"

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Increment(ctx, key, 1); err != nil {
				errs <- fmt.Errorf("increment: %w", err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	got, err := s.Increment(ctx, key, 0)
	if err != nil {
		t.Fatalf("Increment(0) error = %v", err)
	}
	if got != workers {
		t.Fatalf("counter = %d, want %d", got, workers)
	}
}
