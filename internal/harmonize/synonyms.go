package harmonize

import "engcli/pkg/contracts/domain"

// Synonym lists the raw header names that map to one canonical column, in
// priority order.
type Synonym struct {
	Canonical string
	Sources   []string
}

// SynonymTable is the ordered canonical column vocabulary
type SynonymTable []Synonym

// Canonical returns the canonical names in table order
func (s SynonymTable) Canonical() []string {
	out := make([]string, len(s))
	for i, syn := range s {
		out[i] = syn.Canonical
	}
	return out
}

// DefaultSynonyms returns the synonym table shipped with the engine. Every
// call returns a fresh copy.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		{domain.ColTimestamp, []string{"Sample Time"}},
		{domain.ColLoad, []string{"Engine Load Factor [%]", "Engine Percent Load At Current Speed [%]"}},
		{domain.ColRPM, []string{"Engine Speed [RPM]"}},
		{domain.ColCoolantTemp, []string{"Engine Coolant Temperature [Deg. C]"}},
		{domain.ColOilPress, []string{"Engine Oil Pressure [kPa]", "Engine Oil Pressure 1 [kPa]"}},
		{domain.ColOilTemp, []string{"Oil Temperature"}},
		{domain.ColBatt, []string{"Battery Voltage [volts]", "Battery Potential / Power Input 1 [volts]"}},
		{domain.ColBoost, []string{"Boost Pressure [kPa]"}},
		{domain.ColFuelRate, []string{"Fuel Consumption Rate [L/hr]", "Engine Fuel Rate [L/hr]"}},
		{domain.ColExhLeft, []string{
			"Left Exhaust Temperature [Deg. C]",
			"Engine Exhaust Manifold Bank 1 Temperature 1 [Deg. C]",
		}},
		{domain.ColExhRight, []string{"Right Exhaust Temperature [Deg. C]"}},
		{domain.ColTotalFuel, []string{"Total Fuel [L]", "Engine Total Fuel Used [L]"}},
		{domain.ColSMH, []string{
			"Run Hours [Hrs]",
			"Run Hours [Hours]",
			"Total Time [Hours]",
			"Total Operating Hours [Hours]",
			"Engine Total Hours of Operation [Hours]",
			"Engine Total Hours of Operation [Hrs]",
			"Total Operating Hours [Hrs]",
			"Total Time [Hrs]",
			"PLE Run Hours [Hours]",
		}},
		{domain.ColFuelPress, []string{"Fuel Pressure [kPa]"}},
		{domain.ColCrankPress, []string{"Crankcase Pressure [kPa]"}},
		{domain.ColLatitude, []string{"Latitude [Degrees]"}},
		{domain.ColLongitude, []string{"Longitude [Degrees]"}},
		{domain.ColVesselSpeed, []string{"Speed [km/h]"}},
		{domain.ColHeading, []string{"Heading [Degrees]"}},
	}
}

// DefaultEssential is the set of canonical columns whose absence is reported
var DefaultEssential = []string{
	domain.ColTimestamp,
	domain.ColLoad,
	domain.ColSMH,
	domain.ColTotalFuel,
}

// Override renames one raw column of one asset
type Override struct {
	Raw       string
	Canonical string
}

// Overrides holds the per-asset rename overrides keyed by serial
type Overrides map[string][]Override

// Add appends an override for an asset
func (o Overrides) Add(asset, raw, canonical string) {
	o[asset] = append(o[asset], Override{Raw: raw, Canonical: canonical})
}
