// ABOUTME: CapacityValue models limit sums that are scalars or ranges
// ABOUTME: Marshals as a plain number or a {min,max} object

package models

import (
	"encoding/json"
	"fmt"
)

// CapacityValue is either a scalar or a {min,max} range. A node's limit
// sum becomes a range as soon as any contributing service declares
// dynamic-limit bounds; otherwise it stays scalar.
type CapacityValue struct {
	Min     float64
	Max     float64
	IsRange bool
}

// Scalar returns a scalar capacity value.
func Scalar(v float64) CapacityValue {
	return CapacityValue{Min: v, Max: v}
}

// Range returns a {min,max} capacity value.
func Range(min, max float64) CapacityValue {
	return CapacityValue{Min: min, Max: max, IsRange: true}
}

// Worst returns the bound that drives risk categorization.
func (c CapacityValue) Worst() float64 {
	return c.Max
}

// Scale multiplies both bounds, preserving the scalar/range distinction.
func (c CapacityValue) Scale(f float64) CapacityValue {
	return CapacityValue{Min: c.Min * f, Max: c.Max * f, IsRange: c.IsRange}
}

func (c CapacityValue) MarshalJSON() ([]byte, error) {
	if !c.IsRange {
		return json.Marshal(c.Min)
	}
	return json.Marshal(struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}{c.Min, c.Max})
}

func (c *CapacityValue) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*c = Scalar(v)
		return nil
	}
	var r struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("capacity value must be a number or {min,max}: %s", data)
	}
	*c = Range(r.Min, r.Max)
	return nil
}
