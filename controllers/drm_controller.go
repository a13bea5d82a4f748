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
	"sort"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/intel/cpux/pkg/availability"
	"github.com/intel/cpux/pkg/pseudofs"
	"github.com/intel/cpux/pkg/sysfs"
)

const cardPrefix = "card"

// DRMController enumerates graphics cards and their kernel drivers.
type DRMController struct {
	FS  *pseudofs.FS
	Log logr.Logger
}

func NewDRMController(fs *pseudofs.FS, log logr.Logger) *DRMController {
	return &DRMController{FS: fs, Log: log.WithName("drm")}
}

// cardIDs keeps entries named card<N>, skipping connectors like card0-DP-1.
func cardIDs(names []string) []uint {
	ids := []uint{}
	for _, name := range names {
		if !strings.HasPrefix(name, cardPrefix) {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimPrefix(name, cardPrefix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *DRMController) TryCards() ([]uint, error) {
	names, err := c.FS.ReadDirNames(sysfs.DRM())
	if err != nil {
		return nil, err
	}
	ids := cardIDs(names)
	c.Log.V(1).Info("get cards", "cards", ids)
	return ids, nil
}

func (c *DRMController) Cards() availability.Availability[[]uint] {
	return availability.Probe(c.FS, c.TryCards)
}

func (c *DRMController) TryCardDriver(cardID uint) (string, error) {
	val, err := c.FS.ReadLink(sysfs.DRMCardDriver(cardID))
	if err != nil {
		return "", err
	}
	c.Log.V(1).Info("get driver", "card", cardID, "driver", val)
	return val, nil
}

func (c *DRMController) CardDriver(cardID uint) availability.Availability[string] {
	return availability.Probe(c.FS, func() (string, error) { return c.TryCardDriver(cardID) })
}
