// Package notify delivers document changes to observers scoped by path
// prefix.
//
// A subscription receives a change when one of its prefixes is empty,
// equals the change path, or lies on the same branch of the tree as the
// change path (ancestor or descendant). Subscribing to "editor" receives
// changes to "editor" and "editor.tabSize"; subscribing to
// "editor.tabSize" also receives a change that replaces "editor".
package notify

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/jsondoc/internal/engine/document"
	"github.com/dshills/jsondoc/internal/logging"
)

// ErrInvalidListener is returned for a nil observer or for a subscription
// that does not belong to the notifier.
var ErrInvalidListener = errors.New("invalid listener")

// Observer is called when a matching change is dispatched.
// A returned error is logged and otherwise ignored.
type Observer func(change document.Change) error

// Subscription is one registered observer. It is the identity used to
// add and remove prefixes and to unsubscribe.
type Subscription struct {
	id       string
	observer Observer
	prefixes []string
	notifier *Notifier
	active   bool
}

// ID returns the unique subscription ID.
func (s *Subscription) ID() string {
	return s.id
}

// Prefixes returns the prefixes the subscription is registered under.
func (s *Subscription) Prefixes() []string {
	return slices.Clone(s.prefixes)
}

// Active reports whether the subscription still receives changes.
func (s *Subscription) Active() bool {
	return s.active
}

// Watch registers the subscription under an additional prefix.
// Watching an inactive subscription registers it again.
func (s *Subscription) Watch(prefix string) {
	if !slices.Contains(s.prefixes, prefix) {
		s.prefixes = append(s.prefixes, prefix)
	}
	if !s.active {
		s.notifier.add(s)
	}
}

// Unsubscribe removes the subscription from all prefixes.
func (s *Subscription) Unsubscribe() {
	_ = s.notifier.Remove(s)
}

// Matches reports whether change would be delivered to the subscription.
func (s *Subscription) Matches(change document.Change) bool {
	for _, leaf := range change.Leaves() {
		for _, prefix := range s.prefixes {
			if Matches(prefix, leaf.Path) {
				return true
			}
		}
	}
	return false
}

// Matches reports whether a registration at prefix receives a leaf change
// at path.
func Matches(prefix, path string) bool {
	return prefix == "" ||
		prefix == path ||
		document.IsDescendant(path, prefix) ||
		document.IsDescendant(prefix, path)
}

// Notifier manages subscriptions and dispatches changes to them.
//
// Dispatch is synchronous. Observers may call back into the code that
// dispatched, and may subscribe or unsubscribe while a dispatch is in
// progress. Notifier is not safe for concurrent use.
type Notifier struct {
	subs   []*Subscription
	byID   map[string]*Subscription
	logger *logging.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger that receives observer failures.
func WithLogger(l *logging.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		byID:   make(map[string]*Subscription),
		logger: logging.NullLogger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers observer under the given prefixes. With no prefixes
// the observer receives every change.
func (n *Notifier) Subscribe(observer Observer, prefixes ...string) (*Subscription, error) {
	if observer == nil {
		return nil, ErrInvalidListener
	}
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}

	sub := &Subscription{
		id:       uuid.New().String(),
		observer: observer,
		notifier: n,
	}
	for _, p := range prefixes {
		if !slices.Contains(sub.prefixes, p) {
			sub.prefixes = append(sub.prefixes, p)
		}
	}
	n.add(sub)
	return sub, nil
}

func (n *Notifier) add(sub *Subscription) {
	sub.active = true
	n.subs = append(n.subs, sub)
	n.byID[sub.id] = sub
}

// Unsubscribe removes the given prefixes from sub. With no prefixes it
// removes the "" registration only, matching Subscribe's default. A
// subscription left without prefixes is removed. Removing a prefix the
// subscription is not registered under does nothing.
func (n *Notifier) Unsubscribe(sub *Subscription, prefixes ...string) error {
	if sub == nil || sub.notifier != n {
		return ErrInvalidListener
	}
	if !sub.active {
		return nil
	}
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}

	sub.prefixes = slices.DeleteFunc(sub.prefixes, func(p string) bool {
		return slices.Contains(prefixes, p)
	})
	if len(sub.prefixes) > 0 {
		return nil
	}
	n.remove(sub)
	return nil
}

// Remove removes sub from every prefix.
func (n *Notifier) Remove(sub *Subscription) error {
	if sub == nil || sub.notifier != n {
		return ErrInvalidListener
	}
	if sub.active {
		sub.prefixes = nil
		n.remove(sub)
	}
	return nil
}

func (n *Notifier) remove(sub *Subscription) {
	sub.active = false
	delete(n.byID, sub.id)
	n.subs = slices.DeleteFunc(n.subs, func(s *Subscription) bool {
		return s == sub
	})
}

// Lookup returns the active subscription with the given ID.
func (n *Notifier) Lookup(id string) (*Subscription, bool) {
	sub, ok := n.byID[id]
	return sub, ok
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	return len(n.subs)
}

// Prefixes returns the distinct registered prefixes, in registration order.
func (n *Notifier) Prefixes() []string {
	var out []string
	for _, sub := range n.subs {
		for _, p := range sub.prefixes {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Dispatch delivers change to every matching subscription, once each, in
// subscription order. Each observer gets its own copy of the change.
//
// Subscriptions added during the dispatch are not called until the next
// one. A subscription removed during the dispatch is skipped if it has
// not been called yet.
func (n *Notifier) Dispatch(change document.Change) {
	subs := slices.Clone(n.subs)
	for _, sub := range subs {
		if !sub.active || !sub.Matches(change) {
			continue
		}
		if err := n.call(sub, change.Clone()); err != nil {
			n.logger.WithField("subscription", sub.id).Error("observer failed on %s: %v", change.Kind, err)
		}
	}
}

func (n *Notifier) call(sub *Subscription, change document.Change) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sub.observer(change)
}
