// Package shared groups helpers used by more than one engcli package.
//
// The testutil subpackage holds test-only helpers: fixture writers for the
// workbooks and UTF-16 logs the pipeline reads, and a buffered slog handler
// for asserting on log output.
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    testutil.WriteWorkbook(t, path, testutil.Sheet{Name: "ASSET_INFO", Rows: rows})
//	    // ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing here may import domain packages.
package shared
