// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides the fixtures used across the test
// suites: sample CSV documents, an in-memory Excel workbook builder and a
// slog handler that writes to testing.T.
//
//	func TestUpload(t *testing.T) {
//	    data := testutil.XLSX(t,
//	        []interface{}{"day", "level"},
//	        []interface{}{1, 100},
//	    )
//	    // ...
//	}
//
// Nothing here may contain business logic.
package shared
