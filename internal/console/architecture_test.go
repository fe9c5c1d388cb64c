package console

import (
	"testing"

	"hbnb/testutil"
)

func TestConsoleIsBackendAgnostic(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.PersistenceImportForbidden,
		"the interpreter talks to the store only through domain.PersistentStore")
}
