//go:build !jsonstd

package jsoncompat

import "github.com/bytedance/sonic"

// Marshal encodes with sonic using standard library compatible settings.
func Marshal(v any) ([]byte, error) { return sonic.ConfigStd.Marshal(v) }

// Unmarshal decodes with sonic using standard library compatible settings.
func Unmarshal(data []byte, v any) error { return sonic.ConfigStd.Unmarshal(data, v) }
