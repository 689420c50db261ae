// ABOUTME: vSphere discovery of MachineSet candidates via govmomi
// ABOUTME: Optionally dials vCenter through an SSH+SOCKS5 jumpbox

package services

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/session"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"

	"github.com/ronenav/sizer/models"
)

// discoveredDisks is the disk budget assumed for discovered node shapes;
// vSphere does not expose a per-VM disk attachment limit worth trusting.
const discoveredDisks = 24

// VSphereCredentials holds vCenter connection info. AllProxy may carry an
// ssh+socks5:// jumpbox URL for environments where vCenter is not
// directly reachable.
type VSphereCredentials struct {
	Host       string
	Username   string
	Password   string
	Datacenter string
	Insecure   bool
	AllProxy   string
}

// VSphereClient discovers ESXi host shapes usable as MachineSet input.
type VSphereClient struct {
	creds      VSphereCredentials
	client     *govmomi.Client
	finder     *find.Finder
	datacenter *object.Datacenter
}

// NewVSphereClient creates a vSphere client.
func NewVSphereClient(creds VSphereCredentials) *VSphereClient {
	return &VSphereClient{creds: creds}
}

// Connect establishes the vCenter session.
func (v *VSphereClient) Connect(ctx context.Context) error {
	host := v.creds.Host
	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}

	u, err := url.Parse(host + "/sdk")
	if err != nil {
		return fmt.Errorf("invalid vCenter URL '%s': %w", v.creds.Host, err)
	}
	u.User = url.UserPassword(v.creds.Username, v.creds.Password)

	soapClient := soap.NewClient(u, v.creds.Insecure)
	if v.creds.AllProxy != "" {
		dial := createSOCKS5DialContextFunc(v.creds.AllProxy)
		if dial == nil {
			return fmt.Errorf("invalid VSPHERE_ALL_PROXY URL %q", v.creds.AllProxy)
		}
		if transport, ok := soapClient.Transport.(*http.Transport); ok {
			transport.DialContext = dial
		}
	}

	vimClient, err := vim25.NewClient(ctx, soapClient)
	if err != nil {
		return connectError(v.creds.Host, err)
	}
	client := &govmomi.Client{Client: vimClient, SessionManager: session.NewManager(vimClient)}
	if err := client.Login(ctx, u.User); err != nil {
		return connectError(v.creds.Host, err)
	}

	v.client = client
	v.finder = find.NewFinder(client.Client, true)

	dc, err := v.finder.Datacenter(ctx, v.creds.Datacenter)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("datacenter '%s' not found - verify the datacenter name", v.creds.Datacenter)
		}
		return fmt.Errorf("error accessing datacenter '%s': %w", v.creds.Datacenter, err)
	}
	v.datacenter = dc
	v.finder.SetDatacenter(dc)

	slog.Info("vSphere connected", "host", v.creds.Host, "datacenter", v.creds.Datacenter)
	return nil
}

// connectError maps common govmomi failures to actionable messages.
func connectError(host string, err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("connection refused to vCenter at %s - verify the host is reachable", host)
	case strings.Contains(errStr, "no such host"):
		return fmt.Errorf("cannot resolve vCenter hostname '%s' - verify DNS", host)
	case strings.Contains(errStr, "401"), strings.Contains(errStr, "Cannot complete login"):
		return fmt.Errorf("authentication failed - verify username and password")
	case strings.Contains(errStr, "certificate"), strings.Contains(errStr, "x509"):
		return fmt.Errorf("SSL certificate error connecting to %s - try setting VSPHERE_INSECURE=true", host)
	default:
		return fmt.Errorf("failed to connect to vCenter at %s: %w", host, err)
	}
}

// Disconnect closes the vCenter session.
func (v *VSphereClient) Disconnect(ctx context.Context) error {
	if v.client != nil {
		return v.client.Logout(ctx)
	}
	return nil
}

// DiscoverMachineSets derives one MachineSet candidate per compute
// cluster: the smallest powered-on, non-maintenance host shape in the
// cluster, so a sizing run never assumes capacity a host cannot offer.
func (v *VSphereClient) DiscoverMachineSets(ctx context.Context) ([]models.MachineSet, error) {
	clusters, err := v.finder.ClusterComputeResourceList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}

	var machineSets []models.MachineSet
	for _, cluster := range clusters {
		ms, ok, err := v.clusterMachineSet(ctx, cluster)
		if err != nil {
			return nil, fmt.Errorf("inspecting cluster %s: %w", cluster.Name(), err)
		}
		if ok {
			machineSets = append(machineSets, ms)
		}
	}
	return machineSets, nil
}

func (v *VSphereClient) clusterMachineSet(ctx context.Context, cluster *object.ClusterComputeResource) (models.MachineSet, bool, error) {
	var clusterMo mo.ClusterComputeResource
	if err := cluster.Properties(ctx, cluster.Reference(), []string{"host"}, &clusterMo); err != nil {
		return models.MachineSet{}, false, fmt.Errorf("getting cluster properties: %w", err)
	}

	minCores := 0
	minMemoryGB := 0
	usable := 0
	for _, hostRef := range clusterMo.Host {
		host := object.NewHostSystem(v.client.Client, hostRef)

		var hostMo mo.HostSystem
		if err := host.Properties(ctx, host.Reference(), []string{"summary", "runtime"}, &hostMo); err != nil {
			return models.MachineSet{}, false, fmt.Errorf("getting host properties: %w", err)
		}
		if hostMo.Runtime.InMaintenanceMode || hostMo.Runtime.PowerState != "poweredOn" {
			continue
		}

		cores := int(hostMo.Summary.Hardware.NumCpuThreads)
		memoryGB := int(hostMo.Summary.Hardware.MemorySize / (1024 * 1024 * 1024))
		usable++
		if minCores == 0 || cores < minCores {
			minCores = cores
		}
		if minMemoryGB == 0 || memoryGB < minMemoryGB {
			minMemoryGB = memoryGB
		}
	}

	if usable == 0 || minCores == 0 || minMemoryGB == 0 {
		slog.Warn("Skipping cluster with no usable hosts", "cluster", cluster.Name())
		return models.MachineSet{}, false, nil
	}

	return models.MachineSet{
		Name:          cluster.Name(),
		CPU:           minCores,
		Memory:        minMemoryGB,
		InstanceName:  fmt.Sprintf("esxi-%dc-%dg", minCores, minMemoryGB),
		NumberOfDisks: discoveredDisks,
		Label:         "vsphere",
	}, true, nil
}

// createSOCKS5DialContextFunc creates a dial function for SSH+SOCKS5
// jumpbox connections. Supports the format
// ssh+socks5://user@host:port?private-key=/path/to/key
func createSOCKS5DialContextFunc(allProxy string) func(ctx context.Context, network, address string) (net.Conn, error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		slog.Error("Failed to parse proxy URL", "error", err)
		return nil
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		slog.Error("Failed to parse proxy query params", "error", err)
		return nil
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	proxySSHKeyPath := queryMap.Get("private-key")
	if proxySSHKeyPath == "" {
		slog.Error("Proxy URL missing required 'private-key' query param")
		return nil
	}

	proxySSHKey, err := os.ReadFile(proxySSHKeyPath)
	if err != nil {
		slog.Error("Failed to read SSH private key", "path", proxySSHKeyPath, "error", err)
		return nil
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(proxySSHKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}
}
