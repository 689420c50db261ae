// ABOUTME: Quantity types for CPU cores and memory gigabytes
// ABOUTME: Accept plain JSON numbers or Kubernetes quantity strings

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
)

// Cores is a CPU amount in cores. JSON inputs may be numbers (2.5) or
// Kubernetes quantity strings ("2500m").
type Cores float64

// Gigabytes is a memory amount in GB. JSON inputs may be numbers (8) or
// Kubernetes quantity strings ("8Gi"); suffixed strings are converted
// from bytes.
type Gigabytes float64

const bytesPerGB = 1 << 30

func (c *Cores) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Cores(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cpu quantity must be a number or string: %s", data)
	}
	q, err := resource.ParseQuantity(s)
	if err != nil {
		return fmt.Errorf("invalid cpu quantity %q: %w", s, err)
	}
	*c = Cores(q.AsApproximateFloat64())
	return nil
}

func (g *Gigabytes) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*g = Gigabytes(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("memory quantity must be a number or string: %s", data)
	}
	if !strings.ContainsFunc(s, isQuantityLetter) {
		// Bare numeric string, already gigabytes
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid memory quantity %q: %w", s, err)
		}
		*g = Gigabytes(n)
		return nil
	}
	q, err := resource.ParseQuantity(s)
	if err != nil {
		return fmt.Errorf("invalid memory quantity %q: %w", s, err)
	}
	*g = Gigabytes(q.AsApproximateFloat64() / bytesPerGB)
	return nil
}

func isQuantityLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
