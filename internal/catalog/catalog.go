// Package catalog resolves device components to average-watt figures from the
// desktop and mobile power catalogs.
package catalog

import (
	"context"
	"fmt"

	"github.com/vjc2026/EmissionSense/internal/emissions"
	"github.com/vjc2026/EmissionSense/internal/models"
)

// Source is the read-only view of the power catalog tables the resolver
// consumes. Implementations return models.ErrComponentNotFound (possibly
// wrapped) for unknown identifiers.
type Source interface {
	DesktopCPUWatts(ctx context.Context, model string) (float64, error)
	DesktopGPUWatts(ctx context.Context, model string) (float64, error)
	MobileCPUWatts(ctx context.Context, model string) (float64, error)
	MobileGPUWatts(ctx context.Context, model string) (float64, error)
	RAMWatts(ctx context.Context, generation string) (float64, error)
}

// Catalog looks up the wattage for one component kind and model. The desktop
// and mobile variants consult disjoint tables with different wattage fields
// behind this uniform signature.
type Catalog interface {
	Lookup(ctx context.Context, kind models.ComponentKind, model string) (float64, error)
}

type desktopCatalog struct {
	src Source
}

// Lookup resolves desktop components via the avg_watt_usage catalogs. RAM is
// shared with the mobile class and keyed by DDR generation.
func (c desktopCatalog) Lookup(ctx context.Context, kind models.ComponentKind, model string) (float64, error) {
	switch kind {
	case models.ComponentCPU:
		return c.src.DesktopCPUWatts(ctx, model)
	case models.ComponentGPU:
		return c.src.DesktopGPUWatts(ctx, model)
	case models.ComponentRAM:
		return c.src.RAMWatts(ctx, model)
	default:
		return 0, fmt.Errorf("unknown component kind %q", kind)
	}
}

type mobileCatalog struct {
	src Source
}

// Lookup resolves mobile components via the TDP-style watts catalogs.
func (c mobileCatalog) Lookup(ctx context.Context, kind models.ComponentKind, model string) (float64, error) {
	switch kind {
	case models.ComponentCPU:
		return c.src.MobileCPUWatts(ctx, model)
	case models.ComponentGPU:
		return c.src.MobileGPUWatts(ctx, model)
	case models.ComponentRAM:
		return c.src.RAMWatts(ctx, model)
	default:
		return 0, fmt.Errorf("unknown component kind %q", kind)
	}
}

// Resolver dispatches lookups to the catalog matching a device class and
// assembles complete power-draw profiles.
type Resolver struct {
	desktop Catalog
	mobile  Catalog
}

// NewResolver builds a Resolver over the given catalog source.
func NewResolver(src Source) *Resolver {
	return &Resolver{
		desktop: desktopCatalog{src: src},
		mobile:  mobileCatalog{src: src},
	}
}

// ForClass returns the catalog for a device class.
func (r *Resolver) ForClass(class models.DeviceClass) (Catalog, error) {
	switch class {
	case models.DeviceDesktop:
		return r.desktop, nil
	case models.DeviceMobile:
		return r.mobile, nil
	default:
		return nil, fmt.Errorf("unknown device class %q", class)
	}
}

// Lookup resolves a single component for a device class.
func (r *Resolver) Lookup(ctx context.Context, class models.DeviceClass, kind models.ComponentKind, model string) (float64, error) {
	cat, err := r.ForClass(class)
	if err != nil {
		return 0, err
	}
	return cat.Lookup(ctx, kind, model)
}

// ResolveDraw assembles the full power draw for a user's device profile.
// Desktops additionally contribute the profile's rated PSU wattage as a flat
// add. Any unresolvable component fails the whole resolution; no default
// wattage is substituted.
func (r *Resolver) ResolveDraw(ctx context.Context, user models.User) (emissions.PowerDraw, error) {
	cat, err := r.ForClass(user.Device)
	if err != nil {
		return emissions.PowerDraw{}, err
	}

	var draw emissions.PowerDraw
	if draw.CPU, err = cat.Lookup(ctx, models.ComponentCPU, user.CPU); err != nil {
		return emissions.PowerDraw{}, fmt.Errorf("resolve cpu %q: %w", user.CPU, err)
	}
	if draw.GPU, err = cat.Lookup(ctx, models.ComponentGPU, user.GPU); err != nil {
		return emissions.PowerDraw{}, fmt.Errorf("resolve gpu %q: %w", user.GPU, err)
	}
	if draw.RAM, err = cat.Lookup(ctx, models.ComponentRAM, user.RAM); err != nil {
		return emissions.PowerDraw{}, fmt.Errorf("resolve ram %q: %w", user.RAM, err)
	}
	if user.Device == models.DeviceDesktop {
		draw.PSU = user.PSUWatts
	}
	return draw, nil
}
