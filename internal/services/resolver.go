package services

import (
	"context"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/canonical/sosreport-agent/internal/config"
	"github.com/canonical/sosreport-agent/internal/inventory"
	"github.com/canonical/sosreport-agent/internal/models"
)

// Resolver turns operator selectors into the set of node addresses the
// collection tool should target. It dials the controller per call and
// releases the connection before returning.
type Resolver struct {
	cfg  config.Controller
	dial inventory.DialFunc
}

func NewResolver(cfg config.Controller, dial inventory.DialFunc) *Resolver {
	return &Resolver{cfg: cfg, dial: dial}
}

// Resolve validates the model and every selector against the live
// inventory, then returns the union of the per-selector address sets. With
// no selectors at all it falls back to every unit address in the model.
func (r *Resolver) Resolve(ctx context.Context, modelName string, selectors models.Selectors) (sets.Set[string], error) {
	client, err := r.dial(ctx, r.cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	known, err := client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if !sets.New(known...).Has(modelName) {
		return nil, &ModelNotFoundError{Name: modelName, Available: known}
	}

	model, err := client.Model(ctx, modelName)
	if err != nil {
		return nil, err
	}

	nodes := sets.New[string]()

	if len(selectors.Apps) > 0 {
		addrs, err := addressesByApps(model, selectors.Apps)
		if err != nil {
			return nil, err
		}
		nodes = nodes.Union(addrs)
	}

	if len(selectors.Units) > 0 {
		addrs, err := addressesByUnits(model, selectors.Units)
		if err != nil {
			return nil, err
		}
		nodes = nodes.Union(addrs)
	}

	if len(selectors.Machines) > 0 {
		addrs, err := addressesByMachines(model, selectors.Machines)
		if err != nil {
			return nil, err
		}
		nodes = nodes.Union(addrs)
	}

	if nodes.Len() == 0 {
		nodes = model.AllAddresses()
	}

	zap.S().Infow("resolved nodes", "model", modelName, "count", nodes.Len())
	return nodes, nil
}

func addressesByApps(model *inventory.Model, apps []string) (sets.Set[string], error) {
	available := sets.New(model.ApplicationNames()...)
	if missing := sets.New(apps...).Difference(available); missing.Len() > 0 {
		return nil, &ApplicationNotFoundError{Missing: sets.List(missing), Available: sets.List(available)}
	}
	addrs := sets.New[string]()
	for _, app := range apps {
		addrs = addrs.Union(model.AddressesByApplication(app))
	}
	return addrs, nil
}

func addressesByUnits(model *inventory.Model, units []string) (sets.Set[string], error) {
	available := sets.New(model.UnitNames()...)
	if missing := sets.New(units...).Difference(available); missing.Len() > 0 {
		return nil, &UnitNotFoundError{Missing: sets.List(missing), Available: sets.List(available)}
	}
	addrs := sets.New[string]()
	for _, unit := range units {
		addrs.Insert(model.Units[unit].PublicAddress)
	}
	return addrs, nil
}

func addressesByMachines(model *inventory.Model, machines []string) (sets.Set[string], error) {
	if missing := sets.New(machines...).Difference(model.Machines); missing.Len() > 0 {
		return nil, &MachineNotFoundError{Missing: sets.List(missing), Available: model.MachineIDs()}
	}
	// Machines carry no address; resolve through the units occupying them.
	addrs := sets.New[string]()
	for _, id := range machines {
		addrs = addrs.Union(model.AddressesByMachine(id))
	}
	return addrs, nil
}
