package controllers

import (
	"testing"

	"github.com/go-logr/logr/testr"

	"github.com/intel/cpux/pkg/pseudofs"
	"github.com/intel/cpux/pkg/pseudofs/pseudofstest"
)

// fullDummySystem is a two CPU host with cpufreq and intel_pstate; cpu0 has
// no online attribute and cpu1 is online.
func fullDummySystem(t *testing.T) (*pseudofs.FS, *pseudofstest.FaultFs) {
	tree := pseudofstest.NewTree(nil)
	tree.Put("/sys/devices/system/cpu/present", "0-1\n")
	tree.Put("/sys/devices/system/cpu/intel_pstate/status", "active\n")
	tree.MkdirTree("/sys/devices/system/cpu/cpufreq")
	tree.MkdirTree("/sys/devices/system/cpu/cpu0")
	for _, cpu := range []string{"cpu0", "cpu1"} {
		base := "/sys/devices/system/cpu/" + cpu
		tree.Put(base+"/cpufreq/scaling_cur_freq", "2100000\n")
		tree.Put(base+"/cpufreq/scaling_min_freq", "800000\n")
		tree.Put(base+"/cpufreq/scaling_max_freq", "3400000\n")
		tree.Put(base+"/cpufreq/cpuinfo_min_freq", "400000\n")
		tree.Put(base+"/cpufreq/cpuinfo_max_freq", "4700000\n")
		tree.Put(base+"/cpufreq/scaling_governor", "powersave\n")
		tree.Put(base+"/cpufreq/scaling_available_governors", "performance powersave\n")
		tree.Put(base+"/cpufreq/energy_performance_preference", "balance_performance\n")
		tree.Put(base+"/cpufreq/energy_performance_available_preferences",
			"default performance balance_performance balance_power power \n")
		tree.Put(base+"/power/energy_perf_bias", "6\n")
	}
	tree.Put("/sys/devices/system/cpu/cpu1/online", "1\n")
	return pseudofs.New(tree, testr.New(t)), tree
}
