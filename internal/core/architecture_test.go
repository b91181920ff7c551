package core

import (
	"strings"
	"testing"

	"obracore/testutil"
)

// Blob storage is reached through the internal/blob facade only; the infra
// drivers stay behind it.
func TestCoreDoesNotImportBlobDrivers(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		return strings.HasPrefix(path, "obracore/internal/infra/blob")
	}, "core must use the blob facade, not the drivers")
}
