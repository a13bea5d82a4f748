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

// Package units parses and formats the values users type on the command
// line: frequencies, index lists and online toggle vectors.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"k8s.io/utils/cpuset"

	powerv1 "github.com/intel/cpux/api/v1"
)

const (
	kHz = 1e3
	mHz = 1e6

	// 2^64, the first float64 a uint64 cannot hold
	maxUint64 = float64(math.MaxUint64)
)

// parseHz returns the value of text in Hz, or native set when text carries
// no unit and is a plain integer of the caller's native unit.
func parseHz(text string) (hz float64, native uint64, isNative bool, err error) {
	v := strings.ToLower(strings.TrimSpace(text))
	if v == "" {
		return 0, 0, false, fmt.Errorf("empty frequency")
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err == nil {
		return 0, n, true, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, 0, false, fmt.Errorf("frequency %q: out of range", text)
	}
	if !strings.HasSuffix(v, "hz") {
		return 0, 0, false, fmt.Errorf("frequency %q: expected an integer or a hz, khz, mhz, ghz suffix", text)
	}
	v = strings.TrimSuffix(v, "hz")
	// humanize uses SI case: m is milli and M is mega
	switch {
	case strings.HasSuffix(v, "m"):
		v = strings.TrimSuffix(v, "m") + "M"
	case strings.HasSuffix(v, "g"):
		v = strings.TrimSuffix(v, "g") + "G"
	case strings.HasSuffix(v, "t"):
		v = strings.TrimSuffix(v, "t") + "T"
	}
	hz, unit, err := humanize.ParseSI(v)
	if err != nil || unit != "" {
		return 0, 0, false, fmt.Errorf("frequency %q: not a number", text)
	}
	if hz < 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return 0, 0, false, fmt.Errorf("frequency %q: out of range", text)
	}
	return hz, 0, false, nil
}

func parseIn(text string, scale float64) (uint64, error) {
	hz, native, isNative, err := parseHz(text)
	if err != nil {
		return 0, err
	}
	if isNative {
		return native, nil
	}
	v := math.Round(hz / scale)
	if v >= maxUint64 {
		return 0, fmt.Errorf("frequency %q: out of range", text)
	}
	return uint64(v), nil
}

// ParseKHz accepts "4100000", "4100mhz", "4.1GHz". Plain integers are kHz.
func ParseKHz(text string) (uint64, error) {
	return parseIn(text, kHz)
}

// ParseMHz accepts "1100", "1.1ghz". Plain integers are MHz.
func ParseMHz(text string) (uint64, error) {
	return parseIn(text, mHz)
}

func FormatKHz(khz uint64) string {
	return humanize.SIWithDigits(float64(khz)*kHz, 1, "Hz")
}

func FormatMHz(mhz uint64) string {
	return humanize.SIWithDigits(float64(mhz)*mHz, 1, "Hz")
}

// ParseIndices parses a list such as "0,1,2-5". "all" and "" return nil,
// which selects every target.
func ParseIndices(text string) ([]uint, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "all" {
		return nil, nil
	}
	set, err := cpuset.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("index list %q: e.g. 0,1,2-5,9,12-15: %w", text, err)
	}
	ids := make([]uint, 0, set.Size())
	for _, id := range set.List() {
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// FormatIndices is the inverse of ParseIndices.
func FormatIndices(ids []uint) string {
	list := make([]int, 0, len(ids))
	for _, id := range ids {
		list = append(list, int(id))
	}
	return cpuset.New(list...).String()
}

// ParseToggles parses a vector such as "10-1": 1 is on, 0 is off and - is
// left alone. Spaces are ignored.
func ParseToggles(text string) (powerv1.Toggles, error) {
	toggles := powerv1.Toggles{}
	for _, c := range text {
		switch c {
		case '0':
			toggles = append(toggles, powerv1.ToggleOff)
		case '1':
			toggles = append(toggles, powerv1.ToggleOn)
		case '-':
			toggles = append(toggles, powerv1.ToggleSkip)
		case ' ':
		default:
			return nil, fmt.Errorf("toggle list %q: unexpected %q, use 1 (on), 0 (off) or - (skip)", text, c)
		}
	}
	return toggles, nil
}
