package vswitch

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"
	"github.com/vmware/govmomi/vim25/types"

	"opslab/adjanitor/config"
)

// PortGroupSpec describes the port group to create on every host.
type PortGroupSpec struct {
	Name   string
	VLAN   int32
	Switch string
}

// HostResult records the outcome of one host's mutation. Changed is false
// when the host was already in the desired state.
type HostResult struct {
	Host    string `json:"host"`
	Changed bool   `json:"changed"`
	Err     string `json:"error,omitempty"`
}

// Manager mutates standard virtual-switch port groups across the hosts of a
// cluster, one host at a time.
type Manager struct {
	client *govmomi.Client
	finder *find.Finder
	logger zerolog.Logger
}

func NewManager(ctx context.Context, cfg config.VCenterConfiguration, logger zerolog.Logger) (*Manager, error) {
	u, err := soap.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing vCenter URL: %w", err)
	}
	u.User = url.UserPassword(cfg.Username, cfg.Password)

	client, err := govmomi.NewClient(ctx, u, cfg.Insecure)
	if err != nil {
		return nil, fmt.Errorf("connecting to vCenter: %w", err)
	}

	finder := find.NewFinder(client.Client, true)
	datacenter, err := finder.DefaultDatacenter(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving datacenter: %w", err)
	}
	finder.SetDatacenter(datacenter)

	return &Manager{
		client: client,
		finder: finder,
		logger: logger,
	}, nil
}

func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("vCenter logout failed")
	}
}

func (m *Manager) clusterHosts(ctx context.Context, clusterPath string) ([]*object.HostSystem, error) {
	cluster, err := m.finder.ClusterComputeResource(ctx, clusterPath)
	if err != nil {
		return nil, fmt.Errorf("resolving cluster %s: %w", clusterPath, err)
	}
	hosts, err := cluster.Hosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing hosts of %s: %w", clusterPath, err)
	}
	return hosts, nil
}

// hasPortGroup checks the host's current network config so add/remove runs
// are re-runnable.
func hasPortGroup(ctx context.Context, ns *object.HostNetworkSystem, name string) (bool, error) {
	var state mo.HostNetworkSystem
	if err := ns.Properties(ctx, ns.Reference(), []string{"networkInfo.portgroup"}, &state); err != nil {
		return false, fmt.Errorf("reading network config: %w", err)
	}
	if state.NetworkInfo == nil {
		return false, nil
	}
	for _, pg := range state.NetworkInfo.Portgroup {
		if pg.Spec.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// AddPortGroup creates the port group on every host of the cluster. Hosts
// that already carry it are reported unchanged; per-host failures do not
// abort the sweep.
func (m *Manager) AddPortGroup(ctx context.Context, clusterPath string, spec PortGroupSpec) ([]HostResult, error) {
	hosts, err := m.clusterHosts(ctx, clusterPath)
	if err != nil {
		return nil, err
	}

	results := make([]HostResult, 0, len(hosts))
	for _, host := range hosts {
		result := HostResult{Host: host.Name()}

		changed, err := m.addOnHost(ctx, host, spec)
		if err != nil {
			result.Err = err.Error()
			m.logger.Warn().Str("host", host.Name()).Err(err).Msg("adding port group failed")
		}
		result.Changed = changed
		results = append(results, result)
	}
	return results, nil
}

func (m *Manager) addOnHost(ctx context.Context, host *object.HostSystem, spec PortGroupSpec) (bool, error) {
	ns, err := host.ConfigManager().NetworkSystem(ctx)
	if err != nil {
		return false, fmt.Errorf("resolving network system: %w", err)
	}

	exists, err := hasPortGroup(ctx, ns, spec.Name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = ns.AddPortGroup(ctx, types.HostPortGroupSpec{
		Name:        spec.Name,
		VlanId:      spec.VLAN,
		VswitchName: spec.Switch,
		Policy:      types.HostNetworkPolicy{},
	})
	if err != nil {
		return false, fmt.Errorf("adding port group %s: %w", spec.Name, err)
	}
	return true, nil
}

// RemovePortGroup deletes the port group from every host of the cluster that
// still carries it.
func (m *Manager) RemovePortGroup(ctx context.Context, clusterPath, name string) ([]HostResult, error) {
	hosts, err := m.clusterHosts(ctx, clusterPath)
	if err != nil {
		return nil, err
	}

	results := make([]HostResult, 0, len(hosts))
	for _, host := range hosts {
		result := HostResult{Host: host.Name()}

		changed, err := m.removeFromHost(ctx, host, name)
		if err != nil {
			result.Err = err.Error()
			m.logger.Warn().Str("host", host.Name()).Err(err).Msg("removing port group failed")
		}
		result.Changed = changed
		results = append(results, result)
	}
	return results, nil
}

func (m *Manager) removeFromHost(ctx context.Context, host *object.HostSystem, name string) (bool, error) {
	ns, err := host.ConfigManager().NetworkSystem(ctx)
	if err != nil {
		return false, fmt.Errorf("resolving network system: %w", err)
	}

	exists, err := hasPortGroup(ctx, ns, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if err := ns.RemovePortGroup(ctx, name); err != nil {
		return false, fmt.Errorf("removing port group %s: %w", name, err)
	}
	return true, nil
}

// VMNames lists the names of all virtual machines in the datacenter.
func (m *Manager) VMNames(ctx context.Context) ([]string, error) {
	vms, err := m.finder.VirtualMachineList(ctx, "*")
	if err != nil {
		var notFound *find.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing virtual machines: %w", err)
	}

	names := make([]string, 0, len(vms))
	for _, vm := range vms {
		names = append(names, vm.Name())
	}
	return names, nil
}
