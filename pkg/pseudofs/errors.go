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

package pseudofs

import (
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

// ErrorKind classifies a failed pseudo-file operation.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindMalformed:
		return "malformed value"
	default:
		return "i/o error"
	}
}

// Error is returned by every accessor operation. It always names the path.
type Error struct {
	Op   string
	Path string
	Kind ErrorKind
	// Value holds the offending content when Kind is KindMalformed.
	Value string
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == KindMalformed {
		return fmt.Sprintf("%s %s: %s %q: %v", e.Op, e.Path, e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) (ErrorKind, string, bool) {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind, pErr.Path, true
	}
	return KindOther, "", false
}

// KindOf returns the classification and path of err if it came from this package.
func KindOf(err error) (kind ErrorKind, path string, ok bool) {
	return kindOf(err)
}

func IsNotFound(err error) bool {
	kind, _, ok := kindOf(err)
	return ok && kind == KindNotFound
}

func IsPermission(err error) bool {
	kind, _, ok := kindOf(err)
	return ok && kind == KindPermissionDenied
}

func IsMalformed(err error) bool {
	kind, _, ok := kindOf(err)
	return ok && kind == KindMalformed
}

// DefaultNotFoundErrnos are device errors reported by sysfs attributes that
// are inapplicable on the running hardware, either permanently or for the
// current state of the device.
var DefaultNotFoundErrnos = []unix.Errno{unix.ENXIO, unix.EBUSY}

func (p *FS) classify(err error) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		for _, e := range p.notFoundErrnos {
			if errno == e {
				return KindNotFound
			}
		}
	}
	return KindOther
}

func (p *FS) ioError(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: p.classify(err), Err: err}
}

// NewMalformedError reports content at path that does not parse as expected.
func NewMalformedError(op, path, value string, err error) error {
	return &Error{Op: op, Path: path, Kind: KindMalformed, Value: value, Err: err}
}
