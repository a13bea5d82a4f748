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

// Package sysfs maps targets and control names to kernel pseudo-file paths.
//
// All paths are absolute kernel paths. Relocating the tree (tests, chroots)
// is the job of the filesystem handle, not of this package.
package sysfs

import (
	"fmt"
	"path/filepath"
)

const (
	CPUBasePath    = "/sys/devices/system/cpu"
	DRMBasePath    = "/sys/class/drm"
	I915ModulePath = "/sys/module/i915"

	cpufreqDir = "cpufreq"
)

// CPUPresent is the list of CPUs present on the host, in cpu list syntax.
func CPUPresent() string {
	return filepath.Join(CPUBasePath, "present")
}

func CPU(cpuID uint) string {
	return filepath.Join(CPUBasePath, fmt.Sprintf("cpu%d", cpuID))
}

func CPUOnline(cpuID uint) string {
	return filepath.Join(CPU(cpuID), "online")
}

// CPUFreqGlobal is the directory that exists when any cpufreq driver is loaded.
func CPUFreqGlobal() string {
	return filepath.Join(CPUBasePath, cpufreqDir)
}

func CPUFreq(cpuID uint) string {
	return filepath.Join(CPU(cpuID), cpufreqDir)
}

func CPUFreqCurKHz(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "scaling_cur_freq")
}

func CPUFreqMinKHz(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "scaling_min_freq")
}

func CPUFreqMaxKHz(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "scaling_max_freq")
}

func CPUFreqMinKHzLimit(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "cpuinfo_min_freq")
}

func CPUFreqMaxKHzLimit(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "cpuinfo_max_freq")
}

func CPUFreqGovernor(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "scaling_governor")
}

func CPUFreqGovernors(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "scaling_available_governors")
}

func CPUEnergyPerfBias(cpuID uint) string {
	return filepath.Join(CPU(cpuID), "power", "energy_perf_bias")
}

func CPUEnergyPerfPref(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "energy_performance_preference")
}

func CPUEnergyPerfPrefs(cpuID uint) string {
	return filepath.Join(CPUFreq(cpuID), "energy_performance_available_preferences")
}

func IntelPstate() string {
	return filepath.Join(CPUBasePath, "intel_pstate")
}

func IntelPstateStatus() string {
	return filepath.Join(IntelPstate(), "status")
}

func DRM() string {
	return DRMBasePath
}

func DRMCard(cardID uint) string {
	return filepath.Join(DRMBasePath, fmt.Sprintf("card%d", cardID))
}

// DRMCardDriver is a symlink whose target's base name is the driver name.
func DRMCardDriver(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "device", "driver")
}

func I915Module() string {
	return I915ModulePath
}

func I915ActMHz(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "gt_act_freq_mhz")
}

func I915CurMHz(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "gt_cur_freq_mhz")
}

func I915MinMHz(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "gt_min_freq_mhz")
}

func I915MaxMHz(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "gt_max_freq_mhz")
}

func I915BoostMHz(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "gt_boost_freq_mhz")
}

// I915RP0MHz is the hardware maximum.
func I915RP0MHz(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "gt_RP0_freq_mhz")
}

// I915RP1MHz is the most efficient frequency.
func I915RP1MHz(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "gt_RP1_freq_mhz")
}

// I915RPnMHz is the hardware minimum.
func I915RPnMHz(cardID uint) string {
	return filepath.Join(DRMCard(cardID), "gt_RPn_freq_mhz")
}
