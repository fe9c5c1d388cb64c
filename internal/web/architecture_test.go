package web

import (
	"testing"

	"hbnb/testutil"
)

func TestWebIsBackendAgnostic(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.PersistenceImportForbidden,
		"routes read objects through the metrics snapshot only")
}
