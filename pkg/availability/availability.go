/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package availability decides whether a failed pseudo-file operation means
// the feature is absent on this platform or that something went wrong.
//
// It is the only place that decision is made. NotFound is always absence.
// Permission denied is absence only when the path does not exist, because
// some pseudo-filesystems refuse access to attributes they do not implement.
// Everything else, malformed content included, is a failure.
package availability

import (
	"fmt"

	"github.com/intel/cpux/pkg/pseudofs"
)

type State int

const (
	StatePresent State = iota
	StateAbsent
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePresent:
		return "present"
	case StateAbsent:
		return "absent"
	default:
		return "failed"
	}
}

// Availability is the outcome of touching a control: present with a value,
// absent, or failed with an error.
type Availability[T any] struct {
	state State
	value T
	err   error
}

func Present[T any](value T) Availability[T] {
	return Availability[T]{state: StatePresent, value: value}
}

func Absent[T any]() Availability[T] {
	return Availability[T]{state: StateAbsent}
}

func Failed[T any](err error) Availability[T] {
	return Availability[T]{state: StateFailed, err: err}
}

func (a Availability[T]) State() State { return a.state }

func (a Availability[T]) IsPresent() bool { return a.state == StatePresent }

func (a Availability[T]) IsAbsent() bool { return a.state == StateAbsent }

func (a Availability[T]) IsFailed() bool { return a.state == StateFailed }

// Err is nil unless the state is StateFailed.
func (a Availability[T]) Err() error { return a.err }

// Get is the (option, error) view: ok is false when absent or failed.
func (a Availability[T]) Get() (value T, ok bool, err error) {
	return a.value, a.state == StatePresent, a.err
}

// Match calls exactly one of the handlers. All three are required.
func (a Availability[T]) Match(present func(T), absent func(), failed func(error)) {
	switch a.state {
	case StatePresent:
		present(a.value)
	case StateAbsent:
		absent()
	default:
		failed(a.err)
	}
}

// Or returns the value when present and def otherwise.
func (a Availability[T]) Or(def T) T {
	if a.state == StatePresent {
		return a.value
	}
	return def
}

func (a Availability[T]) String() string {
	switch a.state {
	case StatePresent:
		return fmt.Sprint(a.value)
	case StateAbsent:
		return "absent"
	default:
		return fmt.Sprintf("failed: %v", a.err)
	}
}

// Checker confirms whether a filesystem entry exists.
type Checker interface {
	Exists(path string) bool
}

// absent reports whether err means the control does not exist.
func absent(c Checker, err error) bool {
	kind, path, ok := pseudofs.KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case pseudofs.KindNotFound:
		return true
	case pseudofs.KindPermissionDenied:
		return !c.Exists(path)
	}
	return false
}

// Probe runs op and classifies its outcome.
func Probe[T any](c Checker, op func() (T, error)) Availability[T] {
	value, err := op()
	if err == nil {
		return Present(value)
	}
	if absent(c, err) {
		return Absent[T]()
	}
	return Failed[T](err)
}

// Done is the value of a successful operation that returns nothing.
type Done struct{}

// Do runs op, which has no result, and classifies its outcome.
func Do(c Checker, op func() error) Availability[Done] {
	return Probe(c, func() (Done, error) {
		return Done{}, op()
	})
}

// OrDefault runs op and substitutes def where Probe would report absence.
func OrDefault[T any](c Checker, op func() (T, error), def T) (T, error) {
	value, err := op()
	if err == nil {
		return value, nil
	}
	if absent(c, err) {
		return def, nil
	}
	return value, err
}
