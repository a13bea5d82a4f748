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

package controllers

import (
	"github.com/go-logr/logr"

	"github.com/intel/cpux/pkg/availability"
	"github.com/intel/cpux/pkg/pseudofs"
	"github.com/intel/cpux/pkg/sysfs"
)

// OnlineController gets and sets the hotplug state of a CPU. CPUs without an
// online attribute, typically cpu0, cannot be taken offline.
type OnlineController struct {
	FS  *pseudofs.FS
	Log logr.Logger
}

func NewOnlineController(fs *pseudofs.FS, log logr.Logger) *OnlineController {
	return &OnlineController{FS: fs, Log: log.WithName("online")}
}

func (c *OnlineController) TryOnline(cpuID uint) (bool, error) {
	val, err := c.FS.ReadBool(sysfs.CPUOnline(cpuID))
	if err != nil {
		return false, err
	}
	c.Log.V(1).Info("get", "cpu", cpuID, "online", val)
	return val, nil
}

func (c *OnlineController) Online(cpuID uint) availability.Availability[bool] {
	return availability.Probe(c.FS, func() (bool, error) { return c.TryOnline(cpuID) })
}

// OnlineOr returns def when the CPU has no online control.
func (c *OnlineController) OnlineOr(cpuID uint, def bool) (bool, error) {
	return availability.OrDefault(c.FS, func() (bool, error) { return c.TryOnline(cpuID) }, def)
}

func (c *OnlineController) TrySetOnline(cpuID uint, val bool) error {
	c.Log.Info("set", "cpu", cpuID, "online", val)
	return c.FS.WriteBool(sysfs.CPUOnline(cpuID), val)
}

// SetOnline is a no-op for CPUs without an online control.
func (c *OnlineController) SetOnline(cpuID uint, val bool) error {
	_, err := availability.OrDefault(c.FS, func() (availability.Done, error) {
		return availability.Done{}, c.TrySetOnline(cpuID, val)
	}, availability.Done{})
	return err
}
