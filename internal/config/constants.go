package config

import "engcli/pkg/contracts"

// Application constants
const (
	AppName    = "engcli"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. ENGCLI_LOGGING_LEVEL
	EnvPrefix = "ENGCLI"

	DefaultRetentionDays      = 180
	DefaultForecastBoundYears = 50
	// TrendTolerance is the relative band around the baseline counted as within
	TrendTolerance = 0.10
)

// Folder and file names of the database layout
const (
	InfoDirName  = "00 - INFOS"
	TrendDirName = "04 - TRENDBOT"

	AssetInfoFileName        = "ASSET_INFO.xlsx"
	ConfigScriptFileName     = "ConfigScript.xlsx"
	MaintenanceShiftFileName = "MAINTENANCE_SHIFT.xlsx"

	HistoryOutputFileName     = "history_output.csv"
	EventsOutputFileName      = "events_output.csv"
	MaintenanceOutputFileName = "maintenance_output.csv"
	BaselineFileName          = "baseline.csv"
	MonthlyFileName           = "engs_statistics_monthly.csv"
	CommentsFileName          = "comments.csv"
	JournalFileName           = "run_journal.db"

	// MaintenancePlanPathKey is the shared path entry holding the plan workbook
	MaintenancePlanPathKey = "maintanance_plan"
	// SharedRootName is the synced folder every operator has under a different prefix
	SharedRootName = "PBI_BD - BD_Clientes"
)

// Workbook sheet names
const (
	SheetAssetList     = "ASSET_LIST"
	SheetRenameList    = "ListaParm"
	SheetInvalidData   = "DadosInvalidos"
	SheetInvalidEvents = "AlertasDelete"
	SheetSharedPaths   = "CaminhosComuns"
	SheetPlanByModel   = "By Model"
	SheetShiftBySerial = "By SN"
	SheetEventSummary  = "Engine Event Summary"
)
