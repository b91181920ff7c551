package core

import (
	"testing"

	"obracore/testutil"
)

// The blob core types are the contract shared by every driver; they must not
// pull in the rest of the module.
func TestBlobCoreStaysDependencyFree(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ModuleImportForbidden, "blob core must not import module packages")
}
