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

package util

func CPUInCPUList(cpu uint, cpuList []uint) bool {
	for _, cpuListID := range cpuList {
		if cpuListID == cpu {
			return true
		}
	}

	return false
}

// MissingIDs returns the entries of requested that are not in known, in the
// order they were requested.
func MissingIDs(requested, known []uint) []uint {
	missing := []uint{}
	for _, id := range requested {
		if !CPUInCPUList(id, known) {
			missing = append(missing, id)
		}
	}

	return missing
}

func StringInStringList(item string, itemList []string) bool {
	for _, i := range itemList {
		if i == item {
			return true
		}
	}

	return false
}

// UnpackErrsToStrings will try to unpack a multi-error to a list of strings, if possible, if not it will return string
// representation as a first element
func UnpackErrsToStrings(err error) *[]string {
	if err == nil {
		return &[]string{}
	}

	switch joinedErr := err.(type) {
	case interface{ Unwrap() []error }:
		stringErrs := make([]string, len(joinedErr.Unwrap()))
		for i, individualErr := range joinedErr.Unwrap() {
			stringErrs[i] = individualErr.Error()
		}
		return &stringErrs
	default:
		return &[]string{err.Error()}
	}
}
