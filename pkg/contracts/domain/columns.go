package domain

// Canonical column names of the reading history
const (
	ColAsset        = "Asset"
	ColTimestamp    = "Timestamp"
	ColLoad         = "Load"
	ColRPM          = "RPM"
	ColCoolantTemp  = "Coolant_Temp"
	ColOilPress     = "Oil_Press"
	ColOilTemp      = "Oil_Temp"
	ColBatt         = "Batt"
	ColBoost        = "Boost"
	ColFuelRate     = "Fuel_Rate"
	ColExhLeft      = "EXH_L"
	ColExhRight     = "EXH_R"
	ColTotalFuel    = "Total_Fuel"
	ColSMH          = "SMH"
	ColFuelPress    = "Fuel_Press"
	ColCrankPress   = "Crank_Press"
	ColInletAirTemp = "Inlet_Air_Temp"
	ColLatitude     = "Latitude"
	ColLongitude    = "Longitude"
	ColVesselSpeed  = "Vessel_Speed"
	ColHeading      = "Heading"

	// ColExhDiff is the absolute spread between the two exhaust banks
	ColExhDiff = "EXH_DIFF"
	// ColCylExhSpread is the max minus min of the cylinder exhaust ports
	ColCylExhSpread = "Cyl_Exh_Spread"
)

// Event history columns, in output order
const (
	EventColTimestamp   = "Timestamp"
	EventColType        = "Type"
	EventColSource      = "Source"
	EventColCode        = "Code"
	EventColSeverity    = "Severity"
	EventColDescription = "Description"
	EventColAsset       = "Asset"
)

// EventColumns is the column layout of the events history
var EventColumns = []string{
	EventColTimestamp,
	EventColType,
	EventColSource,
	EventColCode,
	EventColSeverity,
	EventColDescription,
	EventColAsset,
}
