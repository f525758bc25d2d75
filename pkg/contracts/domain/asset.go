package domain

import "fmt"

// Asset is one engine in the fleet, identified by its 8 character serial.
type Asset struct {
	Serial string `json:"serial" validate:"required,len=8,alphanum"`
	Model  string `json:"model" validate:"required"`
}

// AssetRegistry maps serials to models. It is built once per run from the
// asset list and is read-only afterwards. Iteration follows insertion order.
type AssetRegistry struct {
	assets []Asset
	index  map[string]int
}

// NewAssetRegistry builds a registry. A repeated serial keeps its first model.
func NewAssetRegistry(assets []Asset) *AssetRegistry {
	r := &AssetRegistry{index: make(map[string]int, len(assets))}
	for _, a := range assets {
		if _, dup := r.index[a.Serial]; dup {
			continue
		}
		r.index[a.Serial] = len(r.assets)
		r.assets = append(r.assets, a)
	}
	return r
}

// Model returns the model of a serial
func (r *AssetRegistry) Model(serial string) (string, bool) {
	if r == nil {
		return "", false
	}
	i, ok := r.index[serial]
	if !ok {
		return "", false
	}
	return r.assets[i].Model, true
}

// Contains reports whether the serial is registered
func (r *AssetRegistry) Contains(serial string) bool {
	_, ok := r.Model(serial)
	return ok
}

// Serials returns the registered serials in order
func (r *AssetRegistry) Serials() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.assets))
	for i, a := range r.assets {
		out[i] = a.Serial
	}
	return out
}

// Len returns the number of registered assets
func (r *AssetRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.assets)
}

// String implements fmt.Stringer
func (r *AssetRegistry) String() string {
	return fmt.Sprintf("AssetRegistry(%d assets)", r.Len())
}
