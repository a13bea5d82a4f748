package controllers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intel/cpux/pkg/pseudofs"
)

// dummyGPUSystem lays out card0 (i915), card1 (amdgpu) and a connector
// entry under a temporary root, since drivers are symlinks.
func dummyGPUSystem(t *testing.T) (*pseudofs.FS, string) {
	root := t.TempDir()
	mk := func(path, content string) {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	link := func(card, driver string) {
		target := filepath.Join(root, "sys/bus/pci/drivers", driver)
		require.NoError(t, os.MkdirAll(target, 0o755))
		dev := filepath.Join(root, "sys/class/drm", card, "device")
		require.NoError(t, os.MkdirAll(dev, 0o755))
		require.NoError(t, os.Symlink(target, filepath.Join(dev, "driver")))
	}
	link("card0", "i915")
	link("card1", "amdgpu")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys/class/drm/card0-DP-1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys/class/drm/renderD128"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys/module/i915"), 0o755))
	for name, val := range map[string]string{
		"gt_act_freq_mhz":   "350\n",
		"gt_cur_freq_mhz":   "400\n",
		"gt_min_freq_mhz":   "300\n",
		"gt_max_freq_mhz":   "1300\n",
		"gt_boost_freq_mhz": "1300\n",
		"gt_RP0_freq_mhz":   "1300\n",
		"gt_RP1_freq_mhz":   "650\n",
		"gt_RPn_freq_mhz":   "300\n",
	} {
		mk(filepath.Join("sys/class/drm/card0", name), val)
	}
	return pseudofs.NewOS(root, testr.New(t)), root
}

func TestDRMController(t *testing.T) {
	fs, _ := dummyGPUSystem(t)
	c := NewDRMController(fs, testr.New(t))

	cards, ok, err := c.Cards().Get()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{0, 1}, cards)

	assert.Equal(t, "i915", c.CardDriver(0).Or(""))
	assert.Equal(t, "amdgpu", c.CardDriver(1).Or(""))
	assert.True(t, c.CardDriver(2).IsAbsent())
}

func TestDRMController_NoDRM(t *testing.T) {
	c := NewDRMController(pseudofs.NewOS(t.TempDir(), testr.New(t)), testr.New(t))
	assert.True(t, c.Cards().IsAbsent())
}

func TestI915Controller(t *testing.T) {
	fs, root := dummyGPUSystem(t)
	c := NewI915Controller(fs, testr.New(t))

	assert.True(t, c.Available())
	cards, err := c.TryCards()
	assert.NoError(t, err)
	assert.Equal(t, []uint{0}, cards)

	assert.Equal(t, uint64(350), c.Actual(0).Or(0))
	assert.Equal(t, uint64(400), c.Requested(0).Or(0))
	assert.Equal(t, uint64(300), c.Min(0).Or(0))
	assert.Equal(t, uint64(1300), c.Max(0).Or(0))
	assert.Equal(t, uint64(1300), c.Boost(0).Or(0))
	assert.Equal(t, uint64(1300), c.MaxLimit(0).Or(0))
	assert.Equal(t, uint64(650), c.OptimumLimit(0).Or(0))
	assert.Equal(t, uint64(300), c.MinLimit(0).Or(0))

	assert.True(t, c.SetMax(0, 1100).IsPresent())
	assert.True(t, c.SetMin(0, 450).IsPresent())
	assert.True(t, c.SetBoost(0, 1200).IsPresent())
	data, err := os.ReadFile(filepath.Join(root, "sys/class/drm/card0/gt_max_freq_mhz"))
	assert.NoError(t, err)
	assert.Equal(t, "1100", string(data))
	assert.Equal(t, uint64(450), c.Min(0).Or(0))
	assert.Equal(t, uint64(1200), c.Boost(0).Or(0))

	// card1 is not an i915 card and has no GT attributes
	assert.True(t, c.Max(1).IsAbsent())
	assert.True(t, c.SetMax(1, 1100).IsAbsent())
}

func TestI915CardsSkipsUnreadableDriver(t *testing.T) {
	fs, root := dummyGPUSystem(t)
	// a driver entry that is not a symlink cannot be resolved
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys/class/drm/card2/device/driver"), 0o755))
	c := NewI915Controller(fs, testr.New(t))

	assert.True(t, c.DRM.CardDriver(2).IsFailed())
	cards, ok, err := c.Cards().Get()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{0}, cards)
}
