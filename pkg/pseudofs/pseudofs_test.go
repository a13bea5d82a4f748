package pseudofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/intel/cpux/pkg/pseudofs/pseudofstest"
)

const (
	boolPath = "/sys/devices/system/cpu/cpu1/online"
	u64Path  = "/sys/devices/system/cpu/cpu1/cpufreq/scaling_max_freq"
	strPath  = "/sys/devices/system/cpu/cpu1/cpufreq/scaling_governor"
	listPath = "/sys/devices/system/cpu/cpu1/cpufreq/scaling_available_governors"
)

func newTestFS(t *testing.T, files map[string]string, opts ...Option) (*FS, *pseudofstest.FaultFs) {
	tree := pseudofstest.NewTree(files)
	return New(tree, testr.New(t), opts...), tree
}

func TestReadBool(t *testing.T) {
	testCases := []struct {
		content   string
		expected  bool
		malformed bool
	}{
		{"1\n", true, false},
		{"0\n", false, false},
		{"1", true, false},
		{"2\n", false, true},
		{"1\n\n", false, true},
		{" 1\n", false, true},
		{"", false, true},
	}
	for _, tc := range testCases {
		p, _ := newTestFS(t, map[string]string{boolPath: tc.content})
		val, err := p.ReadBool(boolPath)
		if tc.malformed {
			assert.True(t, IsMalformed(err), "content %q", tc.content)
			assert.ErrorContains(t, err, boolPath)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, val, "content %q", tc.content)
	}
}

func TestWriteBool(t *testing.T) {
	p, tree := newTestFS(t, map[string]string{boolPath: "1\n"})
	assert.NoError(t, p.WriteBool(boolPath, false))
	assert.Equal(t, "0", tree.Content(boolPath))
	assert.NoError(t, p.WriteBool(boolPath, true))
	assert.Equal(t, "1", tree.Content(boolPath))
}

func TestReadWriteUint64(t *testing.T) {
	p, tree := newTestFS(t, map[string]string{u64Path: "3400000\n"})
	val, err := p.ReadUint64(u64Path)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3400000), val)

	require.NoError(t, p.WriteUint64(u64Path, 4100000))
	assert.Equal(t, "4100000", tree.Content(u64Path))
	val, err = p.ReadUint64(u64Path)
	assert.NoError(t, err)
	assert.Equal(t, uint64(4100000), val)

	tree.Put(u64Path, "-1\n")
	_, err = p.ReadUint64(u64Path)
	assert.True(t, IsMalformed(err))
	kind, path, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindMalformed, kind)
	assert.Equal(t, u64Path, path)
}

func TestReadWriteString(t *testing.T) {
	p, tree := newTestFS(t, map[string]string{strPath: "powersave\n"})
	val, err := p.ReadString(strPath)
	assert.NoError(t, err)
	assert.Equal(t, "powersave", val)

	// only a single newline is trimmed
	tree.Put(strPath, "powersave \n\n")
	val, err = p.ReadString(strPath)
	assert.NoError(t, err)
	assert.Equal(t, "powersave \n", val)

	require.NoError(t, p.WriteString(strPath, "performance"))
	assert.Equal(t, "performance", tree.Content(strPath))
}

func TestReadWriteStringList(t *testing.T) {
	p, tree := newTestFS(t, map[string]string{listPath: "performance powersave \n"})
	val, err := p.ReadStringList(listPath)
	assert.NoError(t, err)
	assert.Equal(t, []string{"performance", "powersave"}, val)

	tree.Put(listPath, "\n")
	val, err = p.ReadStringList(listPath)
	assert.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, p.WriteStringList(listPath, []string{"a", "b", "c"}))
	assert.Equal(t, "a b c", tree.Content(listPath))
}

func TestMissingFileIsNotFound(t *testing.T) {
	p, tree := newTestFS(t, map[string]string{})
	_, err := p.ReadUint64(u64Path)
	assert.True(t, IsNotFound(err))
	assert.ErrorContains(t, err, u64Path)

	err = p.WriteUint64(u64Path, 1)
	assert.True(t, IsNotFound(err))
	assert.False(t, p.Exists(u64Path), "write must not create the attribute")
	assert.Empty(t, tree.Writes())
}

func TestErrnoClassification(t *testing.T) {
	testCases := []struct {
		name     string
		errno    unix.Errno
		expected ErrorKind
	}{
		{"enoent", unix.ENOENT, KindNotFound},
		{"enxio", unix.ENXIO, KindNotFound},
		{"ebusy", unix.EBUSY, KindNotFound},
		{"eacces", unix.EACCES, KindPermissionDenied},
		{"eperm", unix.EPERM, KindPermissionDenied},
		{"einval", unix.EINVAL, KindOther},
		{"eio", unix.EIO, KindOther},
	}
	for _, tc := range testCases {
		p, tree := newTestFS(t, map[string]string{u64Path: "1\n"})
		tree.Fail(u64Path, tc.errno)
		_, err := p.ReadUint64(u64Path)
		kind, path, ok := KindOf(err)
		assert.True(t, ok, tc.name)
		assert.Equal(t, tc.expected, kind, tc.name)
		assert.Equal(t, u64Path, path, tc.name)
		assert.ErrorIs(t, err, tc.errno, tc.name)
	}
}

func TestNotFoundErrnoPolicyIsConfigurable(t *testing.T) {
	p, tree := newTestFS(t, map[string]string{u64Path: "1\n"}, WithNotFoundErrnos())
	tree.Fail(u64Path, unix.ENXIO)
	_, err := p.ReadUint64(u64Path)
	assert.False(t, IsNotFound(err))

	p, tree = newTestFS(t, map[string]string{u64Path: "1\n"}, WithNotFoundErrnos(unix.ENODEV))
	tree.Fail(u64Path, unix.ENODEV)
	_, err = p.ReadUint64(u64Path)
	assert.True(t, IsNotFound(err))
	tree.Fail(u64Path, unix.EBUSY)
	_, err = p.ReadUint64(u64Path)
	assert.False(t, IsNotFound(err))
}

func TestReadDirNames(t *testing.T) {
	p, tree := newTestFS(t, map[string]string{})
	tree.MkdirTree("/sys/class/drm/card0")
	tree.MkdirTree("/sys/class/drm/card1")
	tree.MkdirTree("/sys/class/drm/renderD128")
	names, err := p.ReadDirNames("/sys/class/drm")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"card0", "card1", "renderD128"}, names)

	_, err = p.ReadDirNames("/sys/class/nothing")
	assert.True(t, IsNotFound(err))
}

func TestReadLink(t *testing.T) {
	root := t.TempDir()
	card := filepath.Join(root, "sys/class/drm/card0/device")
	require.NoError(t, os.MkdirAll(card, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys/bus/pci/drivers/i915"), 0o755))
	require.NoError(t, os.Symlink("../../../../bus/pci/drivers/i915", filepath.Join(card, "driver")))

	p := NewOS(root, testr.New(t))
	driver, err := p.ReadLink("/sys/class/drm/card0/device/driver")
	assert.NoError(t, err)
	assert.Equal(t, "i915", driver)

	_, err = p.ReadLink("/sys/class/drm/card1/device/driver")
	assert.True(t, IsNotFound(err))

	mem := New(afero.NewMemMapFs(), testr.New(t))
	_, err = mem.ReadLink("/sys/class/drm/card0/device/driver")
	assert.Error(t, err)
}

func TestNewOSReadsRelocatedTree(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "sys/devices/system/cpu")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "present"), []byte("0-3\n"), 0o644))

	p := NewOS(root, testr.New(t))
	val, err := p.ReadString("/sys/devices/system/cpu/present")
	assert.NoError(t, err)
	assert.Equal(t, "0-3", val)
	assert.True(t, p.Exists("/sys/devices/system/cpu"))
}
