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

// PstateStatuses are the values intel_pstate/status accepts.
var PstateStatuses = []string{"active", "passive", "off"}

// PstateController drives the energy-performance hints of a CPU: the
// energy_perf_bias integer (EPB, 0 performance to 15 powersave) and the
// energy_performance_preference string (EPP).
type PstateController struct {
	FS  *pseudofs.FS
	Log logr.Logger
}

func NewPstateController(fs *pseudofs.FS, log logr.Logger) *PstateController {
	return &PstateController{FS: fs, Log: log.WithName("intel_pstate")}
}

func (c *PstateController) TryEPB(cpuID uint) (uint64, error) {
	val, err := c.FS.ReadUint64(sysfs.CPUEnergyPerfBias(cpuID))
	if err != nil {
		return 0, err
	}
	c.Log.V(1).Info("get epb", "cpu", cpuID, "epb", val)
	return val, nil
}

func (c *PstateController) EPB(cpuID uint) availability.Availability[uint64] {
	return availability.Probe(c.FS, func() (uint64, error) { return c.TryEPB(cpuID) })
}

func (c *PstateController) TrySetEPB(cpuID uint, val uint64) error {
	c.Log.Info("set epb", "cpu", cpuID, "epb", val)
	return c.FS.WriteUint64(sysfs.CPUEnergyPerfBias(cpuID), val)
}

func (c *PstateController) SetEPB(cpuID uint, val uint64) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetEPB(cpuID, val) })
}

func (c *PstateController) TryEPP(cpuID uint) (string, error) {
	val, err := c.FS.ReadString(sysfs.CPUEnergyPerfPref(cpuID))
	if err != nil {
		return "", err
	}
	c.Log.V(1).Info("get epp", "cpu", cpuID, "epp", val)
	return val, nil
}

func (c *PstateController) EPP(cpuID uint) availability.Availability[string] {
	return availability.Probe(c.FS, func() (string, error) { return c.TryEPP(cpuID) })
}

func (c *PstateController) TrySetEPP(cpuID uint, val string) error {
	c.Log.Info("set epp", "cpu", cpuID, "epp", val)
	return c.FS.WriteString(sysfs.CPUEnergyPerfPref(cpuID), val)
}

func (c *PstateController) SetEPP(cpuID uint, val string) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetEPP(cpuID, val) })
}

func (c *PstateController) TryEPPs(cpuID uint) ([]string, error) {
	val, err := c.FS.ReadStringList(sysfs.CPUEnergyPerfPrefs(cpuID))
	if err != nil {
		return nil, err
	}
	c.Log.V(1).Info("get epps", "cpu", cpuID, "epps", val)
	return val, nil
}

func (c *PstateController) EPPs(cpuID uint) availability.Availability[[]string] {
	return availability.Probe(c.FS, func() ([]string, error) { return c.TryEPPs(cpuID) })
}

// TryStatus reads the global driver mode.
func (c *PstateController) TryStatus() (string, error) {
	val, err := c.FS.ReadString(sysfs.IntelPstateStatus())
	if err != nil {
		return "", err
	}
	c.Log.V(1).Info("get status", "status", val)
	return val, nil
}

func (c *PstateController) Status() availability.Availability[string] {
	return availability.Probe(c.FS, c.TryStatus)
}

func (c *PstateController) TrySetStatus(val string) error {
	c.Log.Info("set status", "status", val)
	return c.FS.WriteString(sysfs.IntelPstateStatus(), val)
}

func (c *PstateController) SetStatus(val string) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetStatus(val) })
}
