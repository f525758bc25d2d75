// Package app wires the processing engine together and runs one batch.
//
// # Run Flow
//
// Run loads the configuration, initializes logging and telemetry and
// processes a Request:
//
//  1. Resolve the database layout and the shared paths
//  2. Read the lookup workbooks (assets, overrides, denylists, plan, shifts)
//  3. Execute the pipeline steps in dependency order:
//     ingest, merge, maintenance, trend, events, write
//  4. Record the run and its diagnostics in the run journal
//
// Configuration errors abort the run before any step executes. Per-asset data
// gaps never abort it; they are returned as diagnostics. Outputs are written
// by the last step only, so a failed run leaves prior outputs untouched.
//
// # Usage
//
//	res, err := app.Run(ctx, app.Request{
//	    StorePath:   dbDir,
//	    BundlePath:  "logs.zip",
//	    EventsPath:  "events.xlsx",
//	    Concatenate: true,
//	})
//
// The app does not call os.Exit; the caller maps errors to an exit code.
package app
