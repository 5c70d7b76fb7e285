/*
Copyright 2026.

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

package backends

import (
	"encoding/json"
	"fmt"
)

// JSONProperty extracts a single field from a JSON-encoded secret value.
// Backends use it when a property mapping names a field inside a structured
// secret rather than the whole value.
func JSONProperty(raw []byte, property string) ([]byte, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("secret value is not a JSON object: %w", err)
	}

	value, ok := fields[property]
	if !ok {
		return nil, fmt.Errorf("property %q not found in secret value", property)
	}
	return EncodeValue(value)
}

// EncodeValue renders a decoded secret value as bytes. Strings are used
// verbatim; everything else is re-encoded as JSON.
func EncodeValue(value interface{}) ([]byte, error) {
	if s, ok := value.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(value)
}
