package controllers

import (
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/intel/cpux/pkg/pseudofs"
)

func TestCPUController_IDs(t *testing.T) {
	fs, tree := fullDummySystem(t)
	c := NewCPUController(fs, testr.New(t))

	ids, err := c.IDs()
	assert.NoError(t, err)
	assert.Equal(t, []uint{0, 1}, ids)

	tree.Put("/sys/devices/system/cpu/present", "0-2,5,7-8\n")
	ids, err = c.IDs()
	assert.NoError(t, err)
	assert.Equal(t, []uint{0, 1, 2, 5, 7, 8}, ids)

	tree.Put("/sys/devices/system/cpu/present", "zero\n")
	_, err = c.IDs()
	assert.True(t, pseudofs.IsMalformed(err))

	assert.True(t, c.Exists(0))
	assert.False(t, c.Exists(9))
}

func TestOnlineController(t *testing.T) {
	fs, tree := fullDummySystem(t)
	c := NewOnlineController(fs, testr.New(t))

	// cpu0 has no online attribute
	assert.True(t, c.Online(0).IsAbsent())
	online, err := c.OnlineOr(0, true)
	assert.NoError(t, err)
	assert.True(t, online)
	assert.NoError(t, c.SetOnline(0, false))
	assert.Empty(t, tree.Writes())

	online, err = c.OnlineOr(1, true)
	assert.NoError(t, err)
	assert.True(t, online)

	assert.NoError(t, c.SetOnline(1, false))
	assert.Equal(t, "0", tree.Content("/sys/devices/system/cpu/cpu1/online"))
	val, ok, err := c.Online(1).Get()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.False(t, val)

	// an existing online attribute that refuses access is a real failure
	tree.Fail("/sys/devices/system/cpu/cpu1/online", unix.EACCES)
	_, err = c.OnlineOr(1, true)
	assert.True(t, pseudofs.IsPermission(err))
	assert.True(t, pseudofs.IsPermission(c.SetOnline(1, true)))

	tree.Fail("/sys/devices/system/cpu/cpu1/online", unix.EBUSY)
	assert.NoError(t, c.SetOnline(1, true))

	tree.Fail("/sys/devices/system/cpu/cpu1/online", unix.EINVAL)
	assert.Error(t, c.TrySetOnline(1, true))
	assert.Error(t, c.SetOnline(1, true))
}
