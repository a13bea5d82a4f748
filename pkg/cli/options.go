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

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	powerv1 "github.com/intel/cpux/api/v1"
	"github.com/intel/cpux/controllers"
	"github.com/intel/cpux/pkg/configure"
	"github.com/intel/cpux/pkg/summary"
	"github.com/intel/cpux/pkg/units"
	"github.com/intel/cpux/pkg/util"
)

const maxEPB = 15

// Options holds the raw command line. Empty strings are unset.
type Options struct {
	CPUs         string
	CPUOn        string
	CPUOnEach    string
	FreqGov      string
	FreqMax      string
	FreqMin      string
	PstateEPB    string
	PstateEPP    string
	PstateStatus string

	GPUCards string
	GPUMin   string
	GPUMax   string
	GPUBoost string

	Profile string

	ShowAll    bool
	ShowCPU    bool
	ShowFreq   bool
	ShowPstate bool
	ShowGPU    bool
	Quiet      bool

	Wait    uint
	WaitSet bool

	LogLevel  string
	SysfsRoot string
}

func (o *Options) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.CPUs, "cpus", "c", "", "CPUs to configure, e.g. 0,1,2-5 (default all)")
	flags.StringVarP(&o.CPUOn, "cpu-on", "o", "", "online state of the configured CPUs after configuration: true|false")
	flags.StringVarP(&o.CPUOnEach, "cpu-on-each", "O", "", "per CPU online toggles applied last, e.g. 10-1 => cpu0 on, cpu1 off, cpu2 skip, cpu3 on")
	flags.StringVarP(&o.FreqGov, "freq-gov", "g", "", "scaling governor, e.g. performance")
	flags.StringVarP(&o.FreqMax, "freq-max", "x", "", "max frequency, e.g. 4100000 (kHz), 4100mhz, 4.1ghz")
	flags.StringVarP(&o.FreqMin, "freq-min", "n", "", "min frequency, e.g. 800000 (kHz), 800mhz, 0.8ghz")
	flags.StringVar(&o.PstateEPB, "pstate-epb", "", "energy performance bias, 0 (performance) to 15 (powersave)")
	flags.StringVar(&o.PstateEPP, "pstate-epp", "", "energy performance preference, e.g. balance_power")
	flags.StringVar(&o.PstateStatus, "pstate-status", "", "intel_pstate mode: "+strings.Join(controllers.PstateStatuses, "|"))
	flags.StringVar(&o.GPUCards, "gpu-cards", "", "i915 cards to configure, e.g. 0,1 (default all)")
	flags.StringVar(&o.GPUMin, "gpu-min", "", "GPU min frequency, e.g. 300 (MHz), 0.3ghz")
	flags.StringVar(&o.GPUMax, "gpu-max", "", "GPU max frequency, e.g. 1300 (MHz), 1.3ghz")
	flags.StringVar(&o.GPUBoost, "gpu-boost", "", "GPU boost frequency, e.g. 1300 (MHz), 1.3ghz")
	flags.StringVarP(&o.Profile, "profile", "f", "", "YAML profile; command line values take precedence")
	flags.BoolVarP(&o.ShowAll, "show-all", "a", false, "show every table")
	flags.BoolVar(&o.ShowCPU, "show-cpu", false, "show online state and frequencies")
	flags.BoolVar(&o.ShowFreq, "show-freq", false, "show governors")
	flags.BoolVar(&o.ShowPstate, "show-pstate", false, "show intel_pstate and energy performance hints")
	flags.BoolVar(&o.ShowGPU, "show-gpu", false, "show i915 frequencies")
	flags.BoolVarP(&o.Quiet, "quiet", "q", false, "do not print the summary unless a --show flag is given")
	flags.UintVarP(&o.Wait, "wait", "w", 0, "refresh the summary every N seconds until interrupted")
	flags.StringVar(&o.LogLevel, "log-level", "warn", "error|warn|info|debug|trace")
	flags.StringVar(&o.SysfsRoot, "sysfs-root", "/", "root the /sys tree is looked up under")
}

func setIfEmpty(dst *string, src *string) {
	if *dst == "" && src != nil {
		*dst = *src
	}
}

// ApplyProfile fills every option the command line left unset.
func (o *Options) ApplyProfile(p *powerv1.Profile) {
	spec := p.Spec
	if o.CPUs == "" {
		o.CPUs = p.CPUs
	}
	if o.GPUCards == "" {
		o.GPUCards = p.Cards
	}
	setIfEmpty(&o.FreqMax, spec.Max)
	setIfEmpty(&o.FreqMin, spec.Min)
	setIfEmpty(&o.FreqGov, spec.Governor)
	setIfEmpty(&o.PstateEPP, spec.Epp)
	setIfEmpty(&o.PstateStatus, spec.PstateStatus)
	setIfEmpty(&o.CPUOnEach, spec.OnlineEach)
	setIfEmpty(&o.GPUMin, spec.GpuMin)
	setIfEmpty(&o.GPUMax, spec.GpuMax)
	setIfEmpty(&o.GPUBoost, spec.GpuBoost)
	if o.PstateEPB == "" && spec.Epb != nil {
		o.PstateEPB = strconv.FormatUint(*spec.Epb, 10)
	}
	if o.CPUOn == "" && spec.Online != nil {
		o.CPUOn = strconv.FormatBool(*spec.Online)
	}
}

func optional[T any](flag, text string, parse func(string) (T, error), errs *[]error) *T {
	if text == "" {
		return nil
	}
	val, err := parse(text)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", flag, err))
		return nil
	}
	return &val
}

func parseString(s string) (string, error) { return s, nil }

func parseEPB(s string) (uint64, error) {
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if val > maxEPB {
		return 0, fmt.Errorf("%d is out of range 0-%d", val, maxEPB)
	}
	return val, nil
}

func parsePstateStatus(s string) (string, error) {
	if !util.StringInStringList(s, controllers.PstateStatuses) {
		return "", fmt.Errorf("%q is not one of %s", s, strings.Join(controllers.PstateStatuses, "|"))
	}
	return s, nil
}

// Request validates the CPU options. Every invalid option is reported.
func (o *Options) Request() (configure.Request, error) {
	errs := []error{}
	req := configure.Request{
		Governor:     optional("-g/--freq-gov", o.FreqGov, parseString, &errs),
		MaxKHz:       optional("-x/--freq-max", o.FreqMax, units.ParseKHz, &errs),
		MinKHz:       optional("-n/--freq-min", o.FreqMin, units.ParseKHz, &errs),
		EPB:          optional("--pstate-epb", o.PstateEPB, parseEPB, &errs),
		EPP:          optional("--pstate-epp", o.PstateEPP, parseString, &errs),
		Online:       optional("-o/--cpu-on", o.CPUOn, strconv.ParseBool, &errs),
		PstateStatus: optional("--pstate-status", o.PstateStatus, parsePstateStatus, &errs),
	}
	if toggles := optional("-O/--cpu-on-each", o.CPUOnEach, units.ParseToggles, &errs); toggles != nil {
		req.OnlineEach = *toggles
	}
	if _, err := units.ParseIndices(o.CPUs); err != nil {
		errs = append(errs, fmt.Errorf("-c/--cpus: %w", err))
	}
	return req, errors.Join(errs...)
}

func (o *Options) GPURequest() (configure.GPURequest, error) {
	errs := []error{}
	req := configure.GPURequest{
		MinMHz:   optional("--gpu-min", o.GPUMin, units.ParseMHz, &errs),
		MaxMHz:   optional("--gpu-max", o.GPUMax, units.ParseMHz, &errs),
		BoostMHz: optional("--gpu-boost", o.GPUBoost, units.ParseMHz, &errs),
	}
	if _, err := units.ParseIndices(o.GPUCards); err != nil {
		errs = append(errs, fmt.Errorf("--gpu-cards: %w", err))
	}
	return req, errors.Join(errs...)
}

func (o *Options) showRequested() bool {
	return o.ShowAll || o.ShowCPU || o.ShowFreq || o.ShowPstate || o.ShowGPU
}

// Sections picks the summary tables. Without --show flags the CPU and
// governor tables are shown, plus whatever the request touched.
func (o *Options) Sections(req configure.Request, gpuReq configure.GPURequest) summary.Sections {
	if o.ShowAll {
		return summary.Sections{CPU: true, Freq: true, Pstate: true, GPU: true}
	}
	if o.showRequested() {
		return summary.Sections{CPU: o.ShowCPU, Freq: o.ShowFreq, Pstate: o.ShowPstate, GPU: o.ShowGPU}
	}
	return summary.Sections{
		CPU:    true,
		Freq:   true,
		Pstate: req.EPB != nil || req.EPP != nil || req.PstateStatus != nil,
		GPU:    !gpuReq.Empty(),
	}
}
