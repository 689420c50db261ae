// ABOUTME: Service and Workload models plus the user-facing descriptors
// ABOUTME: Descriptors reference services by name; expansion assigns ids

package models

// OverCommitMode controls how a service's limits are reported.
type OverCommitMode string

const (
	OverCommitStatic  OverCommitMode = "static"
	OverCommitDynamic OverCommitMode = "dynamic"
	OverCommitNone    OverCommitMode = "none"
)

// Service is a schedulable unit. Ids are assigned per sizing run; RunsWith
// and Avoid reference other service ids within the same run.
type Service struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	RequiredCPU    float64        `json:"requiredCPU"`
	RequiredMemory float64        `json:"requiredMemory"`
	LimitCPU       *float64       `json:"limitCPU,omitempty"`
	LimitMemory    *float64       `json:"limitMemory,omitempty"`
	MinLimitCPU    *float64       `json:"minLimitCPU,omitempty"`
	MaxLimitCPU    *float64       `json:"maxLimitCPU,omitempty"`
	MinLimitMemory *float64       `json:"minLimitMemory,omitempty"`
	MaxLimitMemory *float64       `json:"maxLimitMemory,omitempty"`
	OverCommitMode OverCommitMode `json:"overCommitMode,omitempty"`
	Zones          int            `json:"zones"`
	RunsWith       []int          `json:"runsWith,omitempty"`
	Avoid          []int          `json:"avoid,omitempty"`
	OwnerReference int            `json:"ownerReference"`
}

// HasDynamicLimits reports whether any dynamic-limit bound is set.
func (s Service) HasDynamicLimits() bool {
	return s.MinLimitCPU != nil || s.MaxLimitCPU != nil ||
		s.MinLimitMemory != nil || s.MaxLimitMemory != nil
}

// Workload is a named bundle of services owned by a user-level unit.
type Workload struct {
	ID                  int      `json:"id"`
	Name                string   `json:"name"`
	Count               int      `json:"count"`
	UsesMachines        []string `json:"usesMachines,omitempty"`
	Services            []int    `json:"services"`
	AllowControlPlane   bool     `json:"allowControlPlane,omitempty"`
	RequireControlPlane bool     `json:"requireControlPlane,omitempty"`
}

// UsesMachine reports whether the workload is pinned to the named
// MachineSet. An empty UsesMachines set means any MachineSet is allowed.
func (w Workload) UsesMachine(name string) bool {
	for _, m := range w.UsesMachines {
		if m == name {
			return true
		}
	}
	return false
}

// ServiceDescriptor is the user-facing service shape. RunsWith and Avoid
// name services within the same workload descriptor; quantities accept
// numbers or Kubernetes quantity strings.
type ServiceDescriptor struct {
	Name           string         `json:"name"`
	RequiredCPU    Cores          `json:"requiredCPU"`
	RequiredMemory Gigabytes      `json:"requiredMemory"`
	LimitCPU       *Cores         `json:"limitCPU,omitempty"`
	LimitMemory    *Gigabytes     `json:"limitMemory,omitempty"`
	MinLimitCPU    *Cores         `json:"minLimitCPU,omitempty"`
	MaxLimitCPU    *Cores         `json:"maxLimitCPU,omitempty"`
	MinLimitMemory *Gigabytes     `json:"minLimitMemory,omitempty"`
	MaxLimitMemory *Gigabytes     `json:"maxLimitMemory,omitempty"`
	OverCommitMode OverCommitMode `json:"overCommitMode,omitempty"`
	Zones          int            `json:"zones,omitempty"`
	RunsWith       []string       `json:"runsWith,omitempty"`
	Avoid          []string       `json:"avoid,omitempty"`
}

// WorkloadDescriptor is the user-facing workload shape. When Count > 1
// every contained service is replicated with zones set to Count, so each
// replica lands in a distinct zone. This fan-out mirrors the observed
// behavior of the upstream sizer; replicas never stay in-zone.
type WorkloadDescriptor struct {
	Name                string              `json:"name"`
	Count               int                 `json:"count,omitempty"`
	UsesMachines        []string            `json:"usesMachines,omitempty"`
	Services            []ServiceDescriptor `json:"services"`
	AllowControlPlane   bool                `json:"allowControlPlane,omitempty"`
	RequireControlPlane bool                `json:"requireControlPlane,omitempty"`
}
