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

// Package controllers holds one controller per hardware control domain.
// Each controller reads and writes the pseudo-files of a single target and
// never calls another controller.
package controllers

import (
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/utils/cpuset"

	"github.com/intel/cpux/pkg/pseudofs"
	"github.com/intel/cpux/pkg/sysfs"
)

// CPUController enumerates the CPUs present on the host.
type CPUController struct {
	FS  *pseudofs.FS
	Log logr.Logger
}

func NewCPUController(fs *pseudofs.FS, log logr.Logger) *CPUController {
	return &CPUController{FS: fs, Log: log.WithName("cpu")}
}

// IDs returns the present CPUs in ascending order.
func (c *CPUController) IDs() ([]uint, error) {
	path := sysfs.CPUPresent()
	val, err := c.FS.ReadString(path)
	if err != nil {
		return nil, err
	}
	set, err := cpuset.Parse(strings.TrimSpace(val))
	if err != nil {
		return nil, pseudofs.NewMalformedError("read_cpu_list", path, val, err)
	}
	ids := make([]uint, 0, set.Size())
	for _, id := range set.List() {
		ids = append(ids, uint(id))
	}
	c.Log.V(1).Info("get ids", "present", val)
	return ids, nil
}

func (c *CPUController) Exists(cpuID uint) bool {
	return c.FS.Exists(sysfs.CPU(cpuID))
}
