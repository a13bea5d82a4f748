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

// Package cli implements the cpux command: apply the requested CPU and GPU
// settings, then print a summary of the current state.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	powerv1 "github.com/intel/cpux/api/v1"
	"github.com/intel/cpux/controllers"
	"github.com/intel/cpux/pkg/configure"
	"github.com/intel/cpux/pkg/pseudofs"
	"github.com/intel/cpux/pkg/summary"
	"github.com/intel/cpux/pkg/units"
	"github.com/intel/cpux/pkg/util"
)

const clearScreen = "\x1b[2J\x1b[1;1H"

// Run parses args and executes them against the host pseudo-file tree.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o := &Options{}
	flags := pflag.NewFlagSet("cpux", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	o.AddFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	o.WaitSet = flags.Changed("wait")

	log, err := NewLogger(o.LogLevel, stderr)
	if err != nil {
		return err
	}
	if o.Profile != "" {
		profile, err := powerv1.LoadProfile(o.Profile)
		if err != nil {
			return err
		}
		log.V(1).Info("loaded profile", "name", profile.Name, "path", o.Profile)
		o.ApplyProfile(profile)
	}
	return Execute(ctx, o, pseudofs.NewOS(o.SysfsRoot, log), log, stdout)
}

func selectTargets(kind, text string, known []uint) ([]uint, error) {
	ids, err := units.ParseIndices(text)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		return known, nil
	}
	if missing := util.MissingIDs(ids, known); len(missing) > 0 {
		return nil, fmt.Errorf("%s %s not found", kind, units.FormatIndices(missing))
	}
	return ids, nil
}

// i915Cards lists the i915 cards. A listing failure only matters when the
// cards are about to be configured; the summary shows no cards instead.
func i915Cards(i915 *controllers.I915Controller, log logr.Logger, required bool) ([]uint, error) {
	if !i915.Available() {
		log.V(1).Info("i915 module not loaded")
		return nil, nil
	}
	cards, _, err := i915.Cards().Get()
	if err != nil {
		if required {
			return nil, fmt.Errorf("listing i915 cards: %w", err)
		}
		log.Error(err, "listing i915 cards")
		return nil, nil
	}
	return cards, nil
}

// Execute applies o to fs and prints the summary to stdout. With a wait
// interval the summary is refreshed until ctx is done.
func Execute(ctx context.Context, o *Options, fs *pseudofs.FS, log logr.Logger, stdout io.Writer) error {
	req, cpuErr := o.Request()
	gpuReq, gpuErr := o.GPURequest()
	if err := errors.Join(cpuErr, gpuErr); err != nil {
		return err
	}

	present, err := controllers.NewCPUController(fs, log).IDs()
	if err != nil {
		return fmt.Errorf("listing cpus: %w", err)
	}
	tx := configure.NewTransaction(fs, log)
	if !req.Empty() {
		cpus, err := selectTargets("cpu", o.CPUs, present)
		if err != nil {
			return fmt.Errorf("-c/--cpus: %w", err)
		}
		if req.Governor != nil || req.MaxKHz != nil || req.MinKHz != nil {
			if !controllers.NewCPUFreqController(fs, log).Available() {
				log.Info("no cpufreq driver loaded, frequency settings will be skipped")
			}
		}
		if err := tx.Apply(req, cpus); err != nil {
			return err
		}
	}

	sections := o.Sections(req, gpuReq)
	var cards []uint
	if !gpuReq.Empty() || sections.GPU {
		cards, err = i915Cards(controllers.NewI915Controller(fs, log), log, !gpuReq.Empty())
		if err != nil {
			return err
		}
	}
	if !gpuReq.Empty() {
		targets, err := selectTargets("i915 card", o.GPUCards, cards)
		if err != nil {
			return fmt.Errorf("--gpu-cards: %w", err)
		}
		if len(targets) == 0 {
			log.Info("no i915 cards found, skipping gpu settings")
		}
		if err := tx.ApplyGPU(gpuReq, targets); err != nil {
			return err
		}
	}

	reporter := summary.NewReporter(fs, log)
	show := func() error {
		if _, err := fmt.Fprintln(stdout); err != nil {
			return err
		}
		return reporter.Write(stdout, present, cards, sections)
	}

	if !o.WaitSet {
		if o.showRequested() || !o.Quiet {
			return show()
		}
		return nil
	}

	ticker := time.NewTicker(time.Duration(max(o.Wait, 1)) * time.Second)
	defer ticker.Stop()
	for {
		if _, err := fmt.Fprint(stdout, clearScreen); err != nil {
			return err
		}
		if err := show(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
