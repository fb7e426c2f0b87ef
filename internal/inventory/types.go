package inventory

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Unit is one deployed unit of an application, occupying a machine and
// reachable at a public address.
type Unit struct {
	Name          string
	Application   string
	MachineID     string
	PublicAddress string
}

// Model is a snapshot of one model's inventory: which applications, units
// and machines exist and how units map to addresses. Machines carry no
// address of their own; addresses always come from the unit occupying them.
type Model struct {
	Name     string
	Units    map[string]Unit
	Machines sets.Set[string]
}

// ApplicationNames returns the sorted names of the applications present in
// the model.
func (m *Model) ApplicationNames() []string {
	apps := sets.New[string]()
	for _, u := range m.Units {
		apps.Insert(u.Application)
	}
	return sets.List(apps)
}

// UnitNames returns the sorted names of all units in the model.
func (m *Model) UnitNames() []string {
	names := make([]string, 0, len(m.Units))
	for name := range m.Units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MachineIDs returns the sorted ids of all machines in the model.
func (m *Model) MachineIDs() []string {
	return sets.List(m.Machines)
}

// AddressesByApplication returns the addresses of every unit belonging to
// the given application.
func (m *Model) AddressesByApplication(app string) sets.Set[string] {
	addrs := sets.New[string]()
	for _, u := range m.Units {
		if u.Application == app {
			addrs.Insert(u.PublicAddress)
		}
	}
	return addrs
}

// AddressesByMachine returns the addresses of every unit occupying the
// given machine.
func (m *Model) AddressesByMachine(machineID string) sets.Set[string] {
	addrs := sets.New[string]()
	for _, u := range m.Units {
		if u.MachineID == machineID {
			addrs.Insert(u.PublicAddress)
		}
	}
	return addrs
}

// AllAddresses returns the addresses of every unit in the model.
func (m *Model) AllAddresses() sets.Set[string] {
	addrs := sets.New[string]()
	for _, u := range m.Units {
		addrs.Insert(u.PublicAddress)
	}
	return addrs
}
