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

// Package v1 contains the on-disk profile format.
package v1

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileSpec defines the desired state of the CPUs and GPUs of a host.
// Unset fields are left alone.
type ProfileSpec struct {
	// Frequencies accept a native integer (kHz) or a unit suffix: 4100mhz, 4.1ghz
	Max *string `yaml:"max,omitempty" json:"max,omitempty"`
	Min *string `yaml:"min,omitempty" json:"min,omitempty"`

	Governor *string `yaml:"governor,omitempty" json:"governor,omitempty"`

	// Energy performance bias, 0 (performance) to 15 (powersave)
	Epb *uint64 `yaml:"epb,omitempty" json:"epb,omitempty"`

	// Energy performance preference, one of energy_performance_available_preferences
	Epp *string `yaml:"epp,omitempty" json:"epp,omitempty"`

	// Online state of every selected CPU after it has been configured
	Online *bool `yaml:"online,omitempty" json:"online,omitempty"`

	// Per CPU online toggles applied last, e.g. "10-1": cpu0 on, cpu1 off, cpu2 untouched, cpu3 on
	OnlineEach *string `yaml:"onlineEach,omitempty" json:"onlineEach,omitempty"`

	// intel_pstate driver mode: active, passive or off
	PstateStatus *string `yaml:"pstateStatus,omitempty" json:"pstateStatus,omitempty"`

	// GPU frequencies accept a native integer (MHz) or a unit suffix
	GpuMin   *string `yaml:"gpuMin,omitempty" json:"gpuMin,omitempty"`
	GpuMax   *string `yaml:"gpuMax,omitempty" json:"gpuMax,omitempty"`
	GpuBoost *string `yaml:"gpuBoost,omitempty" json:"gpuBoost,omitempty"`
}

// Profile is a named ProfileSpec with the targets it applies to.
type Profile struct {
	// The name of the Profile
	Name string `yaml:"name" json:"name"`

	// CPU list, e.g. "0-3,8"; empty or "all" selects every present CPU
	CPUs string `yaml:"cpus,omitempty" json:"cpus,omitempty"`

	// Card list; empty or "all" selects every i915 card
	Cards string `yaml:"cards,omitempty" json:"cards,omitempty"`

	Spec ProfileSpec `yaml:"spec" json:"spec"`
}

// LoadProfile reads a YAML profile. Unknown fields are rejected.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return ParseProfile(data)
}

func ParseProfile(data []byte) (*Profile, error) {
	profile := &Profile{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(profile); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	return profile, nil
}
