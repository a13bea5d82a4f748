package summary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intel/cpux/pkg/pseudofs"
	"github.com/intel/cpux/pkg/pseudofs/pseudofstest"
	"github.com/intel/cpux/pkg/sysfs"
)

// dummySystem has a fully populated cpu0 and a cpu1 that is offline and
// has lost its cpufreq directory.
func dummySystem(t *testing.T) *Reporter {
	tree := pseudofstest.NewTree(nil)
	tree.Put(sysfs.CPUPresent(), "0-1\n")
	tree.Put(sysfs.IntelPstateStatus(), "active\n")
	tree.Put(sysfs.CPUFreqCurKHz(0), "2100000\n")
	tree.Put(sysfs.CPUFreqMinKHz(0), "800000\n")
	tree.Put(sysfs.CPUFreqMaxKHz(0), "4100000\n")
	tree.Put(sysfs.CPUFreqMinKHzLimit(0), "400000\n")
	tree.Put(sysfs.CPUFreqMaxKHzLimit(0), "4700000\n")
	tree.Put(sysfs.CPUFreqGovernor(0), "powersave\n")
	tree.Put(sysfs.CPUFreqGovernors(0), "performance powersave\n")
	tree.Put(sysfs.CPUEnergyPerfBias(0), "garbage\n")
	tree.Put(sysfs.CPUEnergyPerfPref(0), "balance_power\n")
	tree.Put(sysfs.CPUEnergyPerfPrefs(0), "default performance balance_power \n")
	tree.Put(sysfs.CPUOnline(1), "0\n")
	return NewReporter(pseudofs.New(tree, testr.New(t)), testr.New(t))
}

// rows returns the whitespace separated cells of every line.
func rows(out string) [][]string {
	res := [][]string{}
	for _, line := range strings.Split(out, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			res = append(res, fields)
		}
	}
	return res
}

func TestWriteCPU(t *testing.T) {
	r := dummySystem(t)
	var out bytes.Buffer

	require.NoError(t, r.Write(&out, []uint{0, 1}, nil, Sections{CPU: true}))

	got := rows(out.String())
	require.Len(t, got, 4)
	assert.Equal(t, []string{"CPU", "Online", "Cur", "Min", "Max", "Min", "limit", "Max", "limit"}, got[0])
	assert.Equal(t, []string{"cpu0", "true", "2.1", "GHz", "800", "MHz", "4.1", "GHz", "400", "MHz", "4.7", "GHz"}, got[2])
	assert.Equal(t, []string{"cpu1", "false", "n/a", "n/a", "n/a", "n/a", "n/a"}, got[3])
	assert.True(t, strings.HasPrefix(out.String(), indent+"CPU"))
}

func TestWriteFreqAndPstate(t *testing.T) {
	r := dummySystem(t)
	var out bytes.Buffer

	require.NoError(t, r.Write(&out, []uint{0, 1}, nil, Sections{Freq: true, Pstate: true}))

	got := rows(out.String())
	require.Len(t, got, 9)
	// intel_pstate comes first
	assert.Equal(t, []string{"intel_pstate:", "active"}, got[0])
	// a malformed EPB degrades to n/a
	assert.Equal(t, []string{"cpu0", "n/a", "balance_power", "default,performance,balance_power"}, got[3])
	assert.Equal(t, []string{"cpu1", "n/a", "n/a", "n/a"}, got[4])
	assert.Equal(t, []string{"CPU", "Governor", "Governors"}, got[5])
	assert.Equal(t, []string{"cpu0", "powersave", "performance,powersave"}, got[7])
	assert.Equal(t, []string{"cpu1", "n/a", "n/a"}, got[8])
}

func TestWriteGPUWithoutCards(t *testing.T) {
	r := dummySystem(t)
	var out bytes.Buffer

	require.NoError(t, r.Write(&out, nil, []uint{0}, Sections{GPU: true}))

	got := rows(out.String())
	require.Len(t, got, 3)
	assert.Equal(t, "card0", got[2][0])
	for _, cell := range got[2][1:] {
		assert.Equal(t, notAvailable, cell)
	}
}
