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

package v1

import "strings"

// Toggle is one position of a bulk online vector.
type Toggle int

const (
	ToggleSkip Toggle = iota
	ToggleOff
	ToggleOn
)

func (t Toggle) String() string {
	switch t {
	case ToggleOff:
		return "0"
	case ToggleOn:
		return "1"
	default:
		return "-"
	}
}

// Toggles is indexed by CPU id.
type Toggles []Toggle

func (ts Toggles) String() string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(t.String())
	}
	return b.String()
}
