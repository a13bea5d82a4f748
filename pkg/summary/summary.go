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

// Package summary renders the current control values as text tables.
// Fields that cannot be read are shown as n/a.
package summary

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-logr/logr"

	"github.com/intel/cpux/controllers"
	"github.com/intel/cpux/pkg/availability"
	"github.com/intel/cpux/pkg/pseudofs"
	"github.com/intel/cpux/pkg/units"
)

const (
	notAvailable = "n/a"
	indent       = "  "
)

// Sections selects the tables to render.
type Sections struct {
	CPU    bool
	Freq   bool
	Pstate bool
	GPU    bool
}

type Reporter struct {
	Online *controllers.OnlineController
	Freq   *controllers.CPUFreqController
	Pstate *controllers.PstateController
	I915   *controllers.I915Controller
	Log    logr.Logger
}

func NewReporter(fs *pseudofs.FS, log logr.Logger) *Reporter {
	return &Reporter{
		Online: controllers.NewOnlineController(fs, log),
		Freq:   controllers.NewCPUFreqController(fs, log),
		Pstate: controllers.NewPstateController(fs, log),
		I915:   controllers.NewI915Controller(fs, log),
		Log:    log.WithName("summary"),
	}
}

// field renders a value, degrading to n/a. Failures are logged.
func field[T any](log logr.Logger, a availability.Availability[T], format func(T) string) string {
	out := notAvailable
	a.Match(
		func(v T) { out = format(v) },
		func() {},
		func(err error) { log.Error(err, "reading value for summary") },
	)
	return out
}

func list(v []string) string {
	if len(v) == 0 {
		return "-"
	}
	return strings.Join(v, ",")
}

func str(v string) string { return v }

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

type table struct {
	w *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{w: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	t.row(header...)
	dashes := make([]string, len(header))
	for i, h := range header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	t.row(dashes...)
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.w, indent+strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

// Write renders the selected sections for cpus and cards, each followed by a
// blank line, in the order intel_pstate, governors, CPUs, GPUs.
func (r *Reporter) Write(w io.Writer, cpus, cards []uint, s Sections) error {
	if s.Pstate {
		if err := r.writePstate(w, cpus); err != nil {
			return err
		}
	}
	if s.Freq {
		if err := r.writeFreq(w, cpus); err != nil {
			return err
		}
	}
	if s.CPU {
		if err := r.writeCPU(w, cpus); err != nil {
			return err
		}
	}
	if s.GPU {
		if err := r.writeGPU(w, cards); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) online(cpuID uint) string {
	online, err := r.Online.OnlineOr(cpuID, true)
	if err != nil {
		r.Log.Error(err, "reading value for summary")
		return notAvailable
	}
	return strconv.FormatBool(online)
}

func (r *Reporter) writeCPU(w io.Writer, cpus []uint) error {
	t := newTable(w, "CPU", "Online", "Cur", "Min", "Max", "Min limit", "Max limit")
	for _, cpuID := range cpus {
		t.row(
			fmt.Sprintf("cpu%d", cpuID),
			r.online(cpuID),
			field(r.Log, r.Freq.CurKHz(cpuID), units.FormatKHz),
			field(r.Log, r.Freq.MinKHz(cpuID), units.FormatKHz),
			field(r.Log, r.Freq.MaxKHz(cpuID), units.FormatKHz),
			field(r.Log, r.Freq.MinKHzLimit(cpuID), units.FormatKHz),
			field(r.Log, r.Freq.MaxKHzLimit(cpuID), units.FormatKHz),
		)
	}
	if err := t.flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (r *Reporter) writeFreq(w io.Writer, cpus []uint) error {
	t := newTable(w, "CPU", "Governor", "Governors")
	for _, cpuID := range cpus {
		t.row(
			fmt.Sprintf("cpu%d", cpuID),
			field(r.Log, r.Freq.Governor(cpuID), str),
			field(r.Log, r.Freq.Governors(cpuID), list),
		)
	}
	if err := t.flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (r *Reporter) writePstate(w io.Writer, cpus []uint) error {
	status := field(r.Log, r.Pstate.Status(), str)
	if _, err := fmt.Fprintf(w, "%sintel_pstate: %s\n\n", indent, status); err != nil {
		return err
	}
	t := newTable(w, "CPU", "EPB", "EP Pref", "EP Prefs")
	for _, cpuID := range cpus {
		t.row(
			fmt.Sprintf("cpu%d", cpuID),
			field(r.Log, r.Pstate.EPB(cpuID), u64),
			field(r.Log, r.Pstate.EPP(cpuID), str),
			field(r.Log, r.Pstate.EPPs(cpuID), list),
		)
	}
	if err := t.flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (r *Reporter) writeGPU(w io.Writer, cards []uint) error {
	t := newTable(w, "Card", "Actual", "Requested", "Min", "Max", "Boost", "Min limit", "Optimum", "Max limit")
	for _, cardID := range cards {
		t.row(
			fmt.Sprintf("card%d", cardID),
			field(r.Log, r.I915.Actual(cardID), units.FormatMHz),
			field(r.Log, r.I915.Requested(cardID), units.FormatMHz),
			field(r.Log, r.I915.Min(cardID), units.FormatMHz),
			field(r.Log, r.I915.Max(cardID), units.FormatMHz),
			field(r.Log, r.I915.Boost(cardID), units.FormatMHz),
			field(r.Log, r.I915.MinLimit(cardID), units.FormatMHz),
			field(r.Log, r.I915.OptimumLimit(cardID), units.FormatMHz),
			field(r.Log, r.I915.MaxLimit(cardID), units.FormatMHz),
		)
	}
	if err := t.flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
