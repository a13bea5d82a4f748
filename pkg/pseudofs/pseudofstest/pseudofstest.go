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

// Package pseudofstest provides in-memory pseudo-file trees for tests.
package pseudofstest

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Write is one completed write observed by a FaultFs.
type Write struct {
	Path string
	Data string
}

// FaultFs wraps an afero.Fs, injects errors for chosen paths and records
// every write in the order it happened.
type FaultFs struct {
	afero.Fs

	mu     sync.Mutex
	faults map[string]error
	writes []Write
}

var _ afero.Fs = (*FaultFs)(nil)

func NewFaultFs(base afero.Fs) *FaultFs {
	return &FaultFs{Fs: base, faults: map[string]error{}}
}

// NewTree returns a FaultFs over a MemMapFs populated with files.
func NewTree(files map[string]string) *FaultFs {
	fs := NewFaultFs(afero.NewMemMapFs())
	for path, content := range files {
		fs.Put(path, content)
	}
	return fs
}

// Put creates or replaces the file at path, creating parent directories.
func (f *FaultFs) Put(path, content string) {
	if err := f.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		panic(err)
	}
	if err := afero.WriteFile(f.Fs, path, []byte(content), 0o644); err != nil {
		panic(err)
	}
}

// MkdirTree creates a directory and its parents.
func (f *FaultFs) MkdirTree(path string) {
	if err := f.Fs.MkdirAll(path, 0o755); err != nil {
		panic(err)
	}
}

// Fail makes every open of path fail with err, typically a unix.Errno.
func (f *FaultFs) Fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[path] = err
}

// Content returns the current content of path, or "" if it cannot be read.
func (f *FaultFs) Content(path string) string {
	data, err := afero.ReadFile(f.Fs, path)
	if err != nil {
		return ""
	}
	return string(data)
}

// Writes returns the writes observed so far.
func (f *FaultFs) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

func (f *FaultFs) fault(op, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.faults[name]; ok {
		return &os.PathError{Op: op, Path: name, Err: err}
	}
	return nil
}

func (f *FaultFs) Open(name string) (afero.File, error) {
	if err := f.fault("open", name); err != nil {
		return nil, err
	}
	return f.Fs.Open(name)
}

func (f *FaultFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err := f.fault("open", name); err != nil {
		return nil, err
	}
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return &recordingFile{File: file, fs: f, path: name}, nil
	}
	return file, nil
}

type recordingFile struct {
	afero.File
	fs   *FaultFs
	path string
}

func (r *recordingFile) Write(p []byte) (int, error) {
	n, err := r.File.Write(p)
	if err == nil {
		r.fs.mu.Lock()
		r.fs.writes = append(r.fs.writes, Write{Path: r.path, Data: string(p)})
		r.fs.mu.Unlock()
	}
	return n, err
}
