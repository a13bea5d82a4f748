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

// Package pseudofs reads and writes kernel pseudo-files as typed values.
//
// Encodings: bool is "0" or "1", uint64 is decimal text, string is raw text
// and a string list is single-space separated tokens on one line. Reads drop
// a single trailing newline and nothing else. Nothing is cached: every call
// is one open/read or open/write of the underlying file.
package pseudofs

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// FS is a typed accessor over a pseudo-file tree.
type FS struct {
	fs             afero.Fs
	log            logr.Logger
	notFoundErrnos []unix.Errno
}

type Option func(*FS)

// WithNotFoundErrnos replaces the set of errnos, besides ENOENT, that are
// reported as KindNotFound. Passing no errnos disables the conflation.
func WithNotFoundErrnos(errnos ...unix.Errno) Option {
	return func(p *FS) {
		p.notFoundErrnos = append([]unix.Errno(nil), errnos...)
	}
}

func New(fs afero.Fs, log logr.Logger, opts ...Option) *FS {
	p := &FS{
		fs:             fs,
		log:            log.WithName("pseudofs"),
		notFoundErrnos: DefaultNotFoundErrnos,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewOS returns an accessor over the host filesystem. A non-empty root
// relocates every absolute kernel path under it.
func NewOS(root string, log logr.Logger, opts ...Option) *FS {
	var fs afero.Fs = afero.NewOsFs()
	if root != "" && root != "/" {
		fs = afero.NewBasePathFs(fs, root)
	}
	return New(fs, log, opts...)
}

// Exists reports whether the filesystem entry at path exists.
func (p *FS) Exists(path string) bool {
	_, err := p.fs.Stat(path)
	p.log.V(2).Info("exists", "path", path, "exists", err == nil)
	return err == nil
}

func (p *FS) read(op, path string) (string, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return "", p.ioError(op, path, err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func (p *FS) write(op, path, data string) error {
	// no O_CREATE: an absent attribute must stay absent
	f, err := p.fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return p.ioError(op, path, err)
	}
	if _, err = f.Write([]byte(data)); err != nil {
		_ = f.Close()
		return p.ioError(op, path, err)
	}
	if err = f.Close(); err != nil {
		return p.ioError(op, path, err)
	}
	return nil
}

func (p *FS) ReadBool(path string) (bool, error) {
	p.log.V(2).Info("read_bool", "path", path)
	val, err := p.read("read_bool", path)
	if err != nil {
		return false, err
	}
	switch val {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, NewMalformedError("read_bool", path, val, errors.New("expected 0 or 1"))
}

func (p *FS) WriteBool(path string, val bool) error {
	p.log.V(2).Info("write_bool", "path", path, "value", val)
	data := "0"
	if val {
		data = "1"
	}
	return p.write("write_bool", path, data)
}

func (p *FS) ReadUint64(path string) (uint64, error) {
	p.log.V(2).Info("read_u64", "path", path)
	val, err := p.read("read_u64", path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, NewMalformedError("read_u64", path, val, err)
	}
	return n, nil
}

func (p *FS) WriteUint64(path string, val uint64) error {
	p.log.V(2).Info("write_u64", "path", path, "value", val)
	return p.write("write_u64", path, strconv.FormatUint(val, 10))
}

func (p *FS) ReadString(path string) (string, error) {
	p.log.V(2).Info("read_str", "path", path)
	return p.read("read_str", path)
}

func (p *FS) WriteString(path, val string) error {
	p.log.V(2).Info("write_str", "path", path, "value", strings.ReplaceAll(val, "\n", `\n`))
	return p.write("write_str", path, val)
}

// ReadStringList splits on single spaces. Empty tokens, such as the one
// produced by the trailing blank many cpufreq lists carry, are dropped.
func (p *FS) ReadStringList(path string) ([]string, error) {
	p.log.V(2).Info("read_str_list", "path", path)
	val, err := p.read("read_str_list", path)
	if err != nil {
		return nil, err
	}
	list := []string{}
	for _, token := range strings.Split(val, " ") {
		if token != "" {
			list = append(list, token)
		}
	}
	return list, nil
}

func (p *FS) WriteStringList(path string, val []string) error {
	p.log.V(2).Info("write_str_list", "path", path, "value", val)
	return p.write("write_str_list", path, strings.Join(val, " "))
}

// ReadLink returns the base name of the symlink target at path.
func (p *FS) ReadLink(path string) (string, error) {
	p.log.V(2).Info("read_link", "path", path)
	reader, ok := p.fs.(afero.LinkReader)
	if !ok {
		return "", p.ioError("read_link", path, afero.ErrNoReadlink)
	}
	target, err := reader.ReadlinkIfPossible(path)
	if err != nil {
		return "", p.ioError("read_link", path, err)
	}
	return filepath.Base(target), nil
}

// ReadDirNames lists the entry names of the directory at path.
func (p *FS) ReadDirNames(path string) ([]string, error) {
	p.log.V(2).Info("read_dir", "path", path)
	infos, err := afero.ReadDir(p.fs, path)
	if err != nil {
		return nil, p.ioError("read_dir", path, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}
