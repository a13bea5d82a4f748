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

// CPUFreqController drives the cpufreq scaling attributes of a CPU.
// Frequencies are in kHz, as the kernel publishes them.
type CPUFreqController struct {
	FS  *pseudofs.FS
	Log logr.Logger
}

func NewCPUFreqController(fs *pseudofs.FS, log logr.Logger) *CPUFreqController {
	return &CPUFreqController{FS: fs, Log: log.WithName("cpufreq")}
}

// Available reports whether a cpufreq driver is loaded.
func (c *CPUFreqController) Available() bool {
	return c.FS.Exists(sysfs.CPUFreqGlobal())
}

func (c *CPUFreqController) readKHz(name, path string, cpuID uint) (uint64, error) {
	val, err := c.FS.ReadUint64(path)
	if err != nil {
		return 0, err
	}
	c.Log.V(1).Info("get "+name, "cpu", cpuID, "khz", val)
	return val, nil
}

func (c *CPUFreqController) TryGovernor(cpuID uint) (string, error) {
	val, err := c.FS.ReadString(sysfs.CPUFreqGovernor(cpuID))
	if err != nil {
		return "", err
	}
	c.Log.V(1).Info("get governor", "cpu", cpuID, "governor", val)
	return val, nil
}

func (c *CPUFreqController) Governor(cpuID uint) availability.Availability[string] {
	return availability.Probe(c.FS, func() (string, error) { return c.TryGovernor(cpuID) })
}

func (c *CPUFreqController) TrySetGovernor(cpuID uint, val string) error {
	c.Log.Info("set governor", "cpu", cpuID, "governor", val)
	return c.FS.WriteString(sysfs.CPUFreqGovernor(cpuID), val)
}

func (c *CPUFreqController) SetGovernor(cpuID uint, val string) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetGovernor(cpuID, val) })
}

func (c *CPUFreqController) TryGovernors(cpuID uint) ([]string, error) {
	val, err := c.FS.ReadStringList(sysfs.CPUFreqGovernors(cpuID))
	if err != nil {
		return nil, err
	}
	c.Log.V(1).Info("get governors", "cpu", cpuID, "governors", val)
	return val, nil
}

func (c *CPUFreqController) Governors(cpuID uint) availability.Availability[[]string] {
	return availability.Probe(c.FS, func() ([]string, error) { return c.TryGovernors(cpuID) })
}

func (c *CPUFreqController) TryCurKHz(cpuID uint) (uint64, error) {
	return c.readKHz("cur", sysfs.CPUFreqCurKHz(cpuID), cpuID)
}

func (c *CPUFreqController) CurKHz(cpuID uint) availability.Availability[uint64] {
	return availability.Probe(c.FS, func() (uint64, error) { return c.TryCurKHz(cpuID) })
}

func (c *CPUFreqController) TryMinKHz(cpuID uint) (uint64, error) {
	return c.readKHz("min", sysfs.CPUFreqMinKHz(cpuID), cpuID)
}

func (c *CPUFreqController) MinKHz(cpuID uint) availability.Availability[uint64] {
	return availability.Probe(c.FS, func() (uint64, error) { return c.TryMinKHz(cpuID) })
}

func (c *CPUFreqController) TrySetMinKHz(cpuID uint, val uint64) error {
	c.Log.Info("set min", "cpu", cpuID, "khz", val)
	return c.FS.WriteUint64(sysfs.CPUFreqMinKHz(cpuID), val)
}

func (c *CPUFreqController) SetMinKHz(cpuID uint, val uint64) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetMinKHz(cpuID, val) })
}

func (c *CPUFreqController) TryMaxKHz(cpuID uint) (uint64, error) {
	return c.readKHz("max", sysfs.CPUFreqMaxKHz(cpuID), cpuID)
}

func (c *CPUFreqController) MaxKHz(cpuID uint) availability.Availability[uint64] {
	return availability.Probe(c.FS, func() (uint64, error) { return c.TryMaxKHz(cpuID) })
}

func (c *CPUFreqController) TrySetMaxKHz(cpuID uint, val uint64) error {
	c.Log.Info("set max", "cpu", cpuID, "khz", val)
	return c.FS.WriteUint64(sysfs.CPUFreqMaxKHz(cpuID), val)
}

func (c *CPUFreqController) SetMaxKHz(cpuID uint, val uint64) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetMaxKHz(cpuID, val) })
}

func (c *CPUFreqController) TryMinKHzLimit(cpuID uint) (uint64, error) {
	return c.readKHz("min limit", sysfs.CPUFreqMinKHzLimit(cpuID), cpuID)
}

func (c *CPUFreqController) MinKHzLimit(cpuID uint) availability.Availability[uint64] {
	return availability.Probe(c.FS, func() (uint64, error) { return c.TryMinKHzLimit(cpuID) })
}

func (c *CPUFreqController) TryMaxKHzLimit(cpuID uint) (uint64, error) {
	return c.readKHz("max limit", sysfs.CPUFreqMaxKHzLimit(cpuID), cpuID)
}

func (c *CPUFreqController) MaxKHzLimit(cpuID uint) availability.Availability[uint64] {
	return availability.Probe(c.FS, func() (uint64, error) { return c.TryMaxKHzLimit(cpuID) })
}
