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
	"github.com/go-logr/logr"

	"github.com/intel/cpux/pkg/availability"
	"github.com/intel/cpux/pkg/pseudofs"
	"github.com/intel/cpux/pkg/sysfs"
)

const i915Driver = "i915"

// I915Controller drives the GT frequency attributes of i915 cards, in MHz.
type I915Controller struct {
	FS  *pseudofs.FS
	DRM *DRMController
	Log logr.Logger
}

func NewI915Controller(fs *pseudofs.FS, log logr.Logger) *I915Controller {
	return &I915Controller{FS: fs, DRM: NewDRMController(fs, log), Log: log.WithName("i915")}
}

// Available reports whether the i915 module is loaded.
func (c *I915Controller) Available() bool {
	return c.FS.Exists(sysfs.I915Module())
}

// TryCards returns the DRM cards bound to the i915 driver. Cards whose
// driver link is missing or unreadable are skipped.
func (c *I915Controller) TryCards() ([]uint, error) {
	ids, err := c.DRM.TryCards()
	if err != nil {
		return nil, err
	}
	cards := []uint{}
	for _, cardID := range ids {
		name, ok, err := c.DRM.CardDriver(cardID).Get()
		if err != nil {
			c.Log.Error(err, "reading card driver, skipping card", "card", cardID)
			continue
		}
		if ok && name == i915Driver {
			cards = append(cards, cardID)
		}
	}
	c.Log.V(1).Info("get cards", "cards", cards)
	return cards, nil
}

func (c *I915Controller) Cards() availability.Availability[[]uint] {
	return availability.Probe(c.FS, c.TryCards)
}

func (c *I915Controller) readMHz(name, path string, cardID uint) (uint64, error) {
	val, err := c.FS.ReadUint64(path)
	if err != nil {
		return 0, err
	}
	c.Log.V(1).Info("get "+name, "card", cardID, "mhz", val)
	return val, nil
}

func (c *I915Controller) writeMHz(name, path string, cardID uint, val uint64) error {
	c.Log.Info("set "+name, "card", cardID, "mhz", val)
	return c.FS.WriteUint64(path, val)
}

func (c *I915Controller) probe(op func() (uint64, error)) availability.Availability[uint64] {
	return availability.Probe(c.FS, op)
}

func (c *I915Controller) TryActual(cardID uint) (uint64, error) {
	return c.readMHz("actual", sysfs.I915ActMHz(cardID), cardID)
}

func (c *I915Controller) Actual(cardID uint) availability.Availability[uint64] {
	return c.probe(func() (uint64, error) { return c.TryActual(cardID) })
}

func (c *I915Controller) TryRequested(cardID uint) (uint64, error) {
	return c.readMHz("requested", sysfs.I915CurMHz(cardID), cardID)
}

func (c *I915Controller) Requested(cardID uint) availability.Availability[uint64] {
	return c.probe(func() (uint64, error) { return c.TryRequested(cardID) })
}

func (c *I915Controller) TryMin(cardID uint) (uint64, error) {
	return c.readMHz("min", sysfs.I915MinMHz(cardID), cardID)
}

func (c *I915Controller) Min(cardID uint) availability.Availability[uint64] {
	return c.probe(func() (uint64, error) { return c.TryMin(cardID) })
}

func (c *I915Controller) TrySetMin(cardID uint, val uint64) error {
	return c.writeMHz("min", sysfs.I915MinMHz(cardID), cardID, val)
}

func (c *I915Controller) SetMin(cardID uint, val uint64) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetMin(cardID, val) })
}

func (c *I915Controller) TryMax(cardID uint) (uint64, error) {
	return c.readMHz("max", sysfs.I915MaxMHz(cardID), cardID)
}

func (c *I915Controller) Max(cardID uint) availability.Availability[uint64] {
	return c.probe(func() (uint64, error) { return c.TryMax(cardID) })
}

func (c *I915Controller) TrySetMax(cardID uint, val uint64) error {
	return c.writeMHz("max", sysfs.I915MaxMHz(cardID), cardID, val)
}

func (c *I915Controller) SetMax(cardID uint, val uint64) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetMax(cardID, val) })
}

func (c *I915Controller) TryBoost(cardID uint) (uint64, error) {
	return c.readMHz("boost", sysfs.I915BoostMHz(cardID), cardID)
}

func (c *I915Controller) Boost(cardID uint) availability.Availability[uint64] {
	return c.probe(func() (uint64, error) { return c.TryBoost(cardID) })
}

func (c *I915Controller) TrySetBoost(cardID uint, val uint64) error {
	return c.writeMHz("boost", sysfs.I915BoostMHz(cardID), cardID, val)
}

func (c *I915Controller) SetBoost(cardID uint, val uint64) availability.Availability[availability.Done] {
	return availability.Do(c.FS, func() error { return c.TrySetBoost(cardID, val) })
}

func (c *I915Controller) TryMinLimit(cardID uint) (uint64, error) {
	return c.readMHz("min limit", sysfs.I915RPnMHz(cardID), cardID)
}

func (c *I915Controller) MinLimit(cardID uint) availability.Availability[uint64] {
	return c.probe(func() (uint64, error) { return c.TryMinLimit(cardID) })
}

func (c *I915Controller) TryMaxLimit(cardID uint) (uint64, error) {
	return c.readMHz("max limit", sysfs.I915RP0MHz(cardID), cardID)
}

func (c *I915Controller) MaxLimit(cardID uint) availability.Availability[uint64] {
	return c.probe(func() (uint64, error) { return c.TryMaxLimit(cardID) })
}

func (c *I915Controller) TryOptimumLimit(cardID uint) (uint64, error) {
	return c.readMHz("optimum limit", sysfs.I915RP1MHz(cardID), cardID)
}

func (c *I915Controller) OptimumLimit(cardID uint) availability.Availability[uint64] {
	return c.probe(func() (uint64, error) { return c.TryOptimumLimit(cardID) })
}
