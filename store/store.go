// Package store keeps the latest snapshot of a JSON document streamed from a
// remote source and notifies subscribers each time it changes.
//
// A Store is the bridge between a streaming session and a consumer that only
// wants to know "something changed" and then read the current value, e.g. a
// UI that redraws on notification.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/arnodel/jsonlive/internal/debug"
	"github.com/arnodel/jsonlive/internal/fanout"
	"github.com/arnodel/jsonlive/transport"
	"github.com/arnodel/jsonlive/tree"
	"github.com/arnodel/jsonlive/value"
	"github.com/theory/jsonpath"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
)

var (
	// ErrStarted is returned when Start is called more than once.
	ErrStarted = errors.New("store already started")

	// ErrRetriesExhausted is wrapped by the error reported when the stream
	// could not be resumed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// A Subscriber is notified after each change to the snapshot.
type Subscriber interface {
	Notify()
}

type funcSubscriber struct {
	f func()
}

func (s *funcSubscriber) Notify() {
	s.f()
}

// An Option configures a Store.
type Option func(*Store)

// WithOpener sets the opener used to connect to the session's URL.  The
// default is transport.DefaultOpener.
func WithOpener(opener transport.Opener) Option {
	return func(s *Store) {
		s.opener = opener
	}
}

// WithMaxRetries sets how many consecutive reconnection attempts are made
// after a transport failure.  0 disables reconnection.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		s.maxRetries = max(n, 0)
	}
}

// WithBackoff sets the delay between a transport failure and the first
// reconnection attempt.  The delay doubles with each consecutive attempt and
// is always measured from the latest failure.
func WithBackoff(d time.Duration) Option {
	return func(s *Store) {
		s.backoff = max(d, 0)
	}
}

// WithCloneSnapshots makes the Store publish a deep copy of the document on
// each change instead of the live document.  Snapshots are then safe to use
// from any goroutine and never change after being published.
func WithCloneSnapshots(clone bool) Option {
	return func(s *Store) {
		s.clone = clone
	}
}

// A Store streams the document described by a session and holds its latest
// snapshot.
//
// By default the snapshot is the live document: it is the same object each
// time and keeps changing while the stream runs, so it should only be read
// from subscribers.  Use WithCloneSnapshots to read it from other goroutines.
type Store struct {
	session    *transport.Session
	opener     transport.Opener
	maxRetries int
	backoff    time.Duration
	clone      bool

	mu          sync.Mutex
	started     bool
	snapshot    value.Value
	final       value.Value
	ended       bool
	subscribers fanout.List[Subscriber]
	registered  map[Subscriber]*subscription
	errors      fanout.List[func(error)]
	retries     int
	err         error
	done        chan struct{}
}

// New returns a Store for the given session.  Nothing happens until Start is
// called.
func New(session *transport.Session, opts ...Option) *Store {
	s := &Store{
		session:    session,
		opener:     transport.DefaultOpener,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		registered: map[Subscriber]*subscription{},
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects to the session's URL.  If the connection fails the error is
// returned.  Otherwise the stream is read in a new goroutine until it ends,
// fails for good or ctx is cancelled, after which Done is closed.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.mu.Unlock()

	debug.Printf("session %s: connecting to %s", s.session.ID, s.session.URL)
	src, err := s.opener.Open(ctx, s.session)
	if err != nil {
		err = fmt.Errorf("error connecting to %s: %w", s.session.URL, err)
		s.finish(err)
		return err
	}
	go s.pump(ctx, src)
	return nil
}

// pump runs sources one after the other until one of them ends.
func (s *Store) pump(ctx context.Context, src transport.Source) {
	for {
		err := s.run(ctx, src)
		if err == nil {
			debug.Printf("session %s: stream ended", s.session.ID)
			s.finish(nil)
			return
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			debug.Printf("session %s: cancelled", s.session.ID)
			s.finish(ctxErr)
			return
		}
		src, err = s.reconnect(ctx, err, time.Now())
		if err != nil {
			s.finish(err)
			return
		}
	}
}

// run streams src into a new document.
func (s *Store) run(ctx context.Context, src transport.Source) error {
	defer src.Close()
	m := tree.New()
	delivered := false
	m.OnPartial(func(root value.Value) {
		if !delivered {
			delivered = true
			s.mu.Lock()
			s.retries = 0
			s.mu.Unlock()
		}
		s.publish(root)
	})
	m.OnEnd(s.end)
	m.OnError(s.publishError)
	return m.Run(ctx, src)
}

// reconnect opens the session again after err happened at failedAt, waiting
// longer after each consecutive failure.
func (s *Store) reconnect(ctx context.Context, err error, failedAt time.Time) (transport.Source, error) {
	for {
		s.mu.Lock()
		if s.retries >= s.maxRetries {
			s.mu.Unlock()
			debug.Printf("session %s: giving up: %s", s.session.ID, err)
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, s.maxRetries, err)
		}
		s.retries++
		attempt := s.retries
		s.mu.Unlock()

		if werr := waitSince(ctx, failedAt, s.delay(attempt)); werr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, werr
		}
		debug.Printf("session %s: reconnecting to %s (attempt %d)", s.session.ID, s.session.URL, attempt)
		src, openErr := s.opener.Open(ctx, s.session)
		if openErr == nil {
			return src, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		failedAt = time.Now()
		err = &tree.TransportError{Err: openErr}
		s.publishError(err)
	}
}

// delay returns the backoff before the given attempt, doubling from the first.
func (s *Store) delay(attempt int) time.Duration {
	d := s.backoff
	for i := 1; i < attempt && d <= math.MaxInt64/2; i++ {
		d *= 2
	}
	return d
}

// waitSince blocks until delay has passed since t.  The limiter's only token
// is spent at t, so the next one is available at t+delay.
func waitSince(ctx context.Context, t time.Time, delay time.Duration) error {
	lim := rate.NewLimiter(rate.Every(delay), 1)
	lim.AllowN(t, 1)
	return lim.Wait(ctx)
}

func (s *Store) publish(root value.Value) {
	if s.clone {
		root = value.Clone(root)
	}
	s.mu.Lock()
	s.snapshot = root
	subscribers := s.subscribers.Funcs()
	s.mu.Unlock()
	for _, sub := range subscribers {
		sub.Notify()
	}
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.final = s.snapshot
	s.ended = true
	s.snapshot = nil
}

func (s *Store) publishError(err error) {
	s.mu.Lock()
	listeners := s.errors.Funcs()
	s.mu.Unlock()
	for _, f := range listeners {
		f(err)
	}
}

func (s *Store) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	if errors.Is(err, ErrRetriesExhausted) {
		s.publishError(err)
	}
	close(s.done)
}

// Subscribe registers sub to be notified after each change to the snapshot.
// Subscribers are notified in the order they were first registered;
// registering the same subscriber again has no effect.  The returned
// function unregisters sub.
//
// Notifications happen on the goroutine reading the stream, one at a time.
//
// Subscribers that cannot be compared with == (e.g. a func type with a
// Notify method) are never considered the same, so each registration adds
// a new one.
func (s *Store) Subscribe(sub Subscriber) (unsubscribe func()) {
	if sub == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !reflect.ValueOf(sub).Comparable() {
		return s.unsubscriber(sub, &subscription{remove: s.subscribers.Add(sub)})
	}
	reg, ok := s.registered[sub]
	if !ok {
		reg = &subscription{remove: s.subscribers.Add(sub), dedupe: true}
		s.registered[sub] = reg
	}
	return s.unsubscriber(sub, reg)
}

// A subscription is one entry in the subscriber list.
type subscription struct {
	remove func()
	dedupe bool
}

func (s *Store) unsubscriber(sub Subscriber, reg *subscription) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		reg.remove()
		if reg.dedupe && s.registered[sub] == reg {
			delete(s.registered, sub)
		}
	}
}

// SubscribeFunc registers f as a new subscriber.  Each call registers a
// distinct subscriber, even for the same function.
func (s *Store) SubscribeFunc(f func()) (unsubscribe func()) {
	return s.Subscribe(&funcSubscriber{f: f})
}

// OnError registers f to be called with syntax errors, transport errors and
// the final error if the stream cannot be resumed.
func (s *Store) OnError(f func(error)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removeFunc := s.errors.Add(f)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		removeFunc()
	}
}

// Snapshot returns the current state of the document.  It is nil before any
// value has been read and after the stream has ended.
func (s *Store) Snapshot() value.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Final returns the last snapshot published before the stream ended, and
// whether it has ended.
func (s *Store) Final() (value.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final, s.ended
}

// Query evaluates a JSONPath expression against the current snapshot and
// returns the matching values as produced by value.ToGo.  Unless the Store
// clones snapshots, it should only be called from a subscriber.
func (s *Store) Query(expr string) ([]any, error) {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}
	snapshot := s.Snapshot()
	if snapshot == nil {
		return nil, nil
	}
	return path.Select(value.ToGo(snapshot)), nil
}

// Done is closed when the Store has stopped reading.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Err returns why the Store stopped: nil if the stream ended normally, the
// context error if it was cancelled, or an error wrapping
// ErrRetriesExhausted.  It returns nil while the Store is running.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Retries returns the number of consecutive reconnection attempts so far.
func (s *Store) Retries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retries
}
