package engine

import "context"

type rosterEntry struct {
	ID   string
	Name string
}

// Fixed roster created once at game initialization. Companies are never
// deleted during a session.
var defaultRoster = []rosterEntry{
	{"COBOLT", "Cobalt Dynamics"},
	{"NIMBUS", "Nimbus Labs"},
	{"RUSTIC", "Rustic Systems"},
	{"PYLONS", "Pylon Networks"},
	{"JAVOLT", "Javolt Cloud"},
	{"SWIFTR", "Swiftr Mobile"},
	{"KOTLIN", "Kotlin Forge"},
	{"NODEON", "Nodeon Runtime"},
	{"RUBYIX", "Rubyix Core"},
	{"ELIXIR", "Elixir Ops"},
	{"QUARKX", "Quarkx Compute"},
	{"VECTRA", "Vectra AI"},
	{"DATUMX", "Datumx Data"},
	{"CYBRON", "Cybron Secure"},
	{"FUSION", "Fusion Grid"},
	{"NEBULA", "Nebula Energy"},
	{"ORBITZ", "Orbitz Space"},
	{"ZENITH", "Zenith Retail"},
	{"ARCANE", "Arcane Finance"},
	{"LUMINA", "Lumina Health"},
	{"HELIOS", "Helios Solar"},
	{"KRAKEN", "Kraken Marine"},
	{"TITANX", "Titanx Metals"},
	{"AURORA", "Aurora Optics"},
	{"VORTEX", "Vortex Motors"},
	{"PRISMA", "Prisma Media"},
	{"GLACIE", "Glacier Foods"},
	{"EMBERS", "Embers Gaming"},
	{"SABLEX", "Sablex Logistics"},
	{"CIRRUS", "Cirrus Air"},
	{"MERIDN", "Meridian Rail"},
	{"OPALIS", "Opalis Chemicals"},
	{"QUARRY", "Quarry Mining"},
	{"TEMPOS", "Tempos Robotics"},
	{"WYVERN", "Wyvern Defense"},
	{"ISOTOP", "Isotope Pharma"},
	{"CANOPY", "Canopy Agritech"},
	{"DRIFTN", "Driftline Shipping"},
	{"FABRIK", "Fabrik Textiles"},
	{"ZEPHYR", "Zephyr Aviation"},
}

// SeedRoster creates the fixed company roster if the store is empty and
// runs an initial rank pass. Safe to call on every startup.
func (c *Coordinator) SeedRoster(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.store.ListCompanies(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, entry := range defaultRoster {
		company := Company{
			ID:              entry.ID,
			Name:            entry.Name,
			Value:           c.cfg.StartingValue,
			SharePrice:      SharePrice(c.cfg.StartingValue, c.cfg.TotalShares),
			AvailableFunds:  c.cfg.StartingFunds,
			TotalShares:     c.cfg.TotalShares,
			SharesRemaining: c.cfg.TotalShares,
		}
		if err := c.store.SaveCompany(ctx, company); err != nil {
			return err
		}
	}
	if err := c.recomputeRanksLocked(ctx); err != nil {
		return err
	}
	c.log.Info("roster seeded", "companies", len(defaultRoster))
	return nil
}
