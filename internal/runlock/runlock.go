// Package runlock implements an advisory, Valkey-backed mutual-exclusion
// lock so two mgimport run invocations never race against the same target
// database. It is advisory tooling, not a distributed consensus primitive:
// release is a plain check-then-DEL rather than a Lua compare-and-delete
// script, which is an accepted small race (a lock could in principle be
// released by a party that no longer holds it, if it expired and was
// re-acquired in between) traded for not needing server-side scripting.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ErrHeld is returned by Acquire when another run already holds the lock.
var ErrHeld = errors.New("runlock: lock already held")

func keyFor(target string) string {
	return "mgimport:lock:" + target
}

// Lock represents one held advisory lock, releasable exactly once.
type Lock struct {
	client valkey.Client
	target string
	owner  string
}

// Acquire attempts to take the lock for target, tagging it with owner (a
// run ID) and an expiry of ttl. It reports ErrHeld if some other owner
// currently holds it.
func Acquire(ctx context.Context, addr, target, owner string, ttl time.Duration) (*Lock, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("runlock: connecting to valkey at %s: %w", addr, err)
	}

	resp := client.Do(ctx, client.B().Set().
		Key(keyFor(target)).Value(owner).
		Nx().Px(ttl).
		Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			client.Close()
			return nil, ErrHeld
		}
		client.Close()
		return nil, fmt.Errorf("runlock: acquiring lock for %s: %w", target, err)
	}

	return &Lock{client: client, target: target, owner: owner}, nil
}

// Release deletes the lock key if and only if it still holds our owner
// tag — the check-then-DEL described in the package doc.
func (l *Lock) Release(ctx context.Context) error {
	defer l.client.Close()

	resp := l.client.Do(ctx, l.client.B().Get().Key(keyFor(l.target)).Build())
	current, err := resp.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil
		}
		return fmt.Errorf("runlock: reading lock for %s: %w", l.target, err)
	}
	if current != l.owner {
		return nil
	}

	del := l.client.Do(ctx, l.client.B().Del().Key(keyFor(l.target)).Build())
	if err := del.Error(); err != nil {
		return fmt.Errorf("runlock: releasing lock for %s: %w", l.target, err)
	}
	return nil
}
