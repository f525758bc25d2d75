// Package files finds the per-asset telemetry logs of a run.
//
// Logs arrive as a bundle: either a zip archive exported by the telemetry
// portal or a directory holding the same files. Every log is named after
// the asset it belongs to, with the 8 character serial right before the
// .csv extension, e.g. "Boat 1 - ABC12345.csv".
//
// Example usage:
//
//	bundle, err := files.OpenBundle("/path/to/logs.zip")
//	if err != nil {
//	    return err
//	}
//	defer bundle.Close()
//
//	for _, f := range bundle.Files() {
//	    rc, err := bundle.Open(f)
//	    ...
//	}
package files
