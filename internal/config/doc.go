// Package config provides centralized configuration management for engcli.
// It loads configuration from defaults, an optional YAML file and the
// environment, validates it, and derives every file path of a run from the
// database directory.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file passed with -config
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ENGCLI_<SECTION>_<FIELD>:
//
//	ENGCLI_LOGGING_LEVEL=debug
//	ENGCLI_PIPELINE_RETENTION_DAYS=180
//	ENGCLI_PIPELINE_ESSENTIAL_COLUMNS=Timestamp,Load,SMH,Total_Fuel
//	ENGCLI_JOURNAL_ENABLED=false
//	ENGCLI_TELEMETRY_TRACING=stdout
//	ENGCLI_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/engcli.prom
//
// # Database Layout
//
// Paths are derived from the database directory passed to the processor:
//
//	<parent>/
//	  00 - INFOS/         ASSET_INFO.xlsx, ConfigScript.xlsx, MAINTENANCE_SHIFT.xlsx
//	  04 - TRENDBOT/      baseline.csv, engs_statistics_monthly.csv, comments.csv
//	  <database>/         history_output.csv, events_output.csv,
//	                      maintenance_output.csv, run_journal.db
//
// The maintenance plan workbook lives outside this tree and is located
// through the shared paths sheet of ConfigScript.xlsx.
package config
