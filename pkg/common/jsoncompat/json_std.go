//go:build jsonstd

package jsoncompat

import "encoding/json"

// Marshal proxies to the standard library json.Marshal when the jsonstd build tag is present.
func Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal proxies to the standard library json.Unmarshal when the jsonstd build tag is present.
func Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
