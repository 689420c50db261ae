// ABOUTME: Platform instance catalogs loaded from embedded JSON files
// ABOUTME: Lookups are case-insensitive; unknown platforms fall back to AWS

package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ronenav/sizer/models"
)

//go:embed platforms/*.json
var platformFS embed.FS

// Platform names. Values are string-valued on the wire.
const (
	BareMetal  = "BareMetal"
	AWS        = "AWS"
	GCP        = "GCP"
	Azure      = "Azure"
	VMware     = "VMware"
	RHV        = "RHV"
	IBMClassic = "IBM-Classic"
	IBMVPC     = "IBM-VPC"
)

var platformFiles = map[string]string{
	strings.ToLower(BareMetal):  "platforms/baremetal.json",
	strings.ToLower(AWS):        "platforms/aws.json",
	strings.ToLower(GCP):        "platforms/gcp.json",
	strings.ToLower(Azure):      "platforms/azure.json",
	strings.ToLower(VMware):     "platforms/vmware.json",
	strings.ToLower(RHV):        "platforms/rhv.json",
	strings.ToLower(IBMClassic): "platforms/ibm-classic.json",
	strings.ToLower(IBMVPC):     "platforms/ibm-vpc.json",
}

// Platforms returns the known platform names in stable order.
func Platforms() []string {
	names := []string{BareMetal, AWS, GCP, Azure, VMware, RHV, IBMClassic, IBMVPC}
	sort.Strings(names)
	return names
}

// InstancesForPlatform returns the instance catalog for a platform.
// Unknown platform names fall back to the AWS catalog.
func InstancesForPlatform(name string) []models.Instance {
	file, ok := platformFiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		file = platformFiles[strings.ToLower(AWS)]
	}

	data, err := platformFS.ReadFile(file)
	if err != nil {
		// Embedded files are fixed at build time; a missing file is a
		// packaging defect.
		panic(fmt.Sprintf("catalog: missing embedded platform file %s: %v", file, err))
	}

	var instances []models.Instance
	if err := json.Unmarshal(data, &instances); err != nil {
		panic(fmt.Sprintf("catalog: malformed platform file %s: %v", file, err))
	}
	return instances
}

// DefaultInstanceForPlatform returns the platform's default instance: the
// entry flagged default, else the first entry.
func DefaultInstanceForPlatform(name string) models.Instance {
	instances := InstancesForPlatform(name)
	for _, inst := range instances {
		if inst.Default {
			return inst
		}
	}
	return instances[0]
}
