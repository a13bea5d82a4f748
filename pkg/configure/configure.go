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

// Package configure applies a set of control values to CPUs and GPUs.
//
// Frequency, governor and energy attributes of an offline CPU are usually
// missing or read-only, so each offline CPU is brought online for the
// duration of its configuration and put back offline afterwards unless the
// request says otherwise. A bulk toggle vector, when given, is applied after
// every CPU has been configured and has the final word on online state.
package configure

import (
	"fmt"

	"github.com/go-logr/logr"

	powerv1 "github.com/intel/cpux/api/v1"
	"github.com/intel/cpux/controllers"
	"github.com/intel/cpux/pkg/availability"
	"github.com/intel/cpux/pkg/pseudofs"
)

type OnlineControl interface {
	OnlineOr(cpuID uint, def bool) (bool, error)
	TrySetOnline(cpuID uint, val bool) error
	SetOnline(cpuID uint, val bool) error
}

type FreqControl interface {
	SetGovernor(cpuID uint, val string) availability.Availability[availability.Done]
	SetMaxKHz(cpuID uint, val uint64) availability.Availability[availability.Done]
	SetMinKHz(cpuID uint, val uint64) availability.Availability[availability.Done]
}

type PstateControl interface {
	SetEPB(cpuID uint, val uint64) availability.Availability[availability.Done]
	SetEPP(cpuID uint, val string) availability.Availability[availability.Done]
	SetStatus(val string) availability.Availability[availability.Done]
}

type GPUControl interface {
	SetMax(cardID uint, val uint64) availability.Availability[availability.Done]
	SetMin(cardID uint, val uint64) availability.Availability[availability.Done]
	SetBoost(cardID uint, val uint64) availability.Availability[availability.Done]
}

// Request is a sparse set of CPU control values. Nil fields are not touched.
type Request struct {
	Governor *string
	MaxKHz   *uint64
	MinKHz   *uint64
	EPB      *uint64
	EPP      *string
	// Online overrides the online state each CPU had before configuration.
	Online *bool
	// OnlineEach is applied once, after all CPUs, indexed by CPU id.
	OnlineEach powerv1.Toggles
	// PstateStatus is global and applied before any CPU.
	PstateStatus *string
}

// Empty reports whether the request would not touch anything.
func (r Request) Empty() bool {
	return r.Governor == nil && r.MaxKHz == nil && r.MinKHz == nil &&
		r.EPB == nil && r.EPP == nil && r.Online == nil &&
		r.OnlineEach == nil && r.PstateStatus == nil
}

// GPURequest is a sparse set of GPU frequencies in MHz.
type GPURequest struct {
	MaxMHz   *uint64
	MinMHz   *uint64
	BoostMHz *uint64
}

func (r GPURequest) Empty() bool {
	return r.MaxMHz == nil && r.MinMHz == nil && r.BoostMHz == nil
}

// Transaction applies requests through the domain controllers.
type Transaction struct {
	Online OnlineControl
	Freq   FreqControl
	Pstate PstateControl
	GPU    GPUControl
	Log    logr.Logger
}

// NewTransaction wires a Transaction to the controllers of fs.
func NewTransaction(fs *pseudofs.FS, log logr.Logger) *Transaction {
	return &Transaction{
		Online: controllers.NewOnlineController(fs, log),
		Freq:   controllers.NewCPUFreqController(fs, log),
		Pstate: controllers.NewPstateController(fs, log),
		GPU:    controllers.NewI915Controller(fs, log),
		Log:    log.WithName("configure"),
	}
}

type step struct {
	control string
	set     func() availability.Availability[availability.Done]
}

// settle turns the outcome of one setter into the error that ends the pass,
// if any. Absent controls are skipped.
func settle(log logr.Logger, target string, s step) error {
	var err error
	s.set().Match(
		func(availability.Done) {},
		func() { log.V(1).Info("control not available, skipping", "control", s.control) },
		func(failure error) { err = fmt.Errorf("%s: set %s: %w", target, s.control, failure) },
	)
	return err
}

// Apply configures cpus strictly in the order given. The first failure
// aborts the pass; controls already written stay written.
func (t *Transaction) Apply(req Request, cpus []uint) error {
	if req.PstateStatus != nil {
		status := *req.PstateStatus
		err := settle(t.Log, "intel_pstate", step{"status", func() availability.Availability[availability.Done] {
			return t.Pstate.SetStatus(status)
		}})
		if err != nil {
			return err
		}
	}
	for _, cpuID := range cpus {
		if err := t.applyCPU(req, cpuID); err != nil {
			return err
		}
	}
	for i, toggle := range req.OnlineEach {
		if toggle == powerv1.ToggleSkip {
			continue
		}
		cpuID := uint(i)
		if err := t.Online.SetOnline(cpuID, toggle == powerv1.ToggleOn); err != nil {
			return fmt.Errorf("cpu%d: set online %s: %w", cpuID, toggle, err)
		}
	}
	return nil
}

func (t *Transaction) applyCPU(req Request, cpuID uint) error {
	log := t.Log.WithValues("cpu", cpuID)
	target := fmt.Sprintf("cpu%d", cpuID)

	online, err := t.Online.OnlineOr(cpuID, true)
	if err != nil {
		return fmt.Errorf("%s: get online: %w", target, err)
	}
	forced := false
	if !online {
		if err := t.Online.TrySetOnline(cpuID, true); err != nil {
			log.Error(err, "could not bring cpu online for configuration, continuing")
		} else {
			forced = true
		}
	}

	for _, s := range cpuSteps(t, req, cpuID) {
		if err := settle(log, target, s); err != nil {
			return err
		}
	}

	desired := online
	if req.Online != nil {
		desired = *req.Online
	}
	current := online || forced
	if desired != current {
		log.V(1).Info("restoring online state", "online", desired, "forced", forced)
		if err := t.Online.SetOnline(cpuID, desired); err != nil {
			return fmt.Errorf("%s: set online %t: %w", target, desired, err)
		}
	}
	return nil
}

// cpuSteps lists the requested controls in their fixed order:
// governor, max, min, EPB, EPP.
func cpuSteps(t *Transaction, req Request, cpuID uint) []step {
	steps := []step{}
	if req.Governor != nil {
		val := *req.Governor
		steps = append(steps, step{"governor", func() availability.Availability[availability.Done] {
			return t.Freq.SetGovernor(cpuID, val)
		}})
	}
	if req.MaxKHz != nil {
		val := *req.MaxKHz
		steps = append(steps, step{"max frequency", func() availability.Availability[availability.Done] {
			return t.Freq.SetMaxKHz(cpuID, val)
		}})
	}
	if req.MinKHz != nil {
		val := *req.MinKHz
		steps = append(steps, step{"min frequency", func() availability.Availability[availability.Done] {
			return t.Freq.SetMinKHz(cpuID, val)
		}})
	}
	if req.EPB != nil {
		val := *req.EPB
		steps = append(steps, step{"energy perf bias", func() availability.Availability[availability.Done] {
			return t.Pstate.SetEPB(cpuID, val)
		}})
	}
	if req.EPP != nil {
		val := *req.EPP
		steps = append(steps, step{"energy perf preference", func() availability.Availability[availability.Done] {
			return t.Pstate.SetEPP(cpuID, val)
		}})
	}
	return steps
}

// ApplyGPU sets max, min and boost, in that order, on every card.
func (t *Transaction) ApplyGPU(req GPURequest, cards []uint) error {
	for _, cardID := range cards {
		log := t.Log.WithValues("card", cardID)
		target := fmt.Sprintf("card%d", cardID)
		steps := []step{}
		if req.MaxMHz != nil {
			val := *req.MaxMHz
			steps = append(steps, step{"max frequency", func() availability.Availability[availability.Done] {
				return t.GPU.SetMax(cardID, val)
			}})
		}
		if req.MinMHz != nil {
			val := *req.MinMHz
			steps = append(steps, step{"min frequency", func() availability.Availability[availability.Done] {
				return t.GPU.SetMin(cardID, val)
			}})
		}
		if req.BoostMHz != nil {
			val := *req.BoostMHz
			steps = append(steps, step{"boost frequency", func() availability.Availability[availability.Done] {
				return t.GPU.SetBoost(cardID, val)
			}})
		}
		for _, s := range steps {
			if err := settle(log, target, s); err != nil {
				return err
			}
		}
	}
	return nil
}
