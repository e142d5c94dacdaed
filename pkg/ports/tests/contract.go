package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/ports"
)

// SourceLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.SourceLoader.
// setupData maps each loadable path to the family of its root entity.
func SourceLoaderContractTest(t *testing.T, loader ports.SourceLoader, setupData map[string]domain.Family) {
	t.Helper()

	t.Run("Load_Success", func(t *testing.T) {
		for path, family := range setupData {
			entity, err := loader.Load(path)
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", path, err)
			}
			if entity.Family() != family {
				t.Errorf("family mismatch for %s. got %q, want %q", path, entity.Family(), family)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load("/non/existent/fragment.launch.xml")
		if err == nil {
			t.Fatal("expected error for non-existent fragment, got nil")
		}
		if !errors.Is(err, domain.ErrSourceNotFound) {
			t.Errorf("expected domain.ErrSourceNotFound, got %v", err)
		}
	})

	t.Run("Load_IsRepeatable", func(t *testing.T) {
		for path := range setupData {
			first, err := loader.Load(path)
			if err != nil {
				t.Fatalf("first load of %s failed: %v", path, err)
			}
			second, err := loader.Load(path)
			if err != nil {
				t.Fatalf("second load of %s failed: %v", path, err)
			}
			if first.Family() != second.Family() {
				t.Errorf("repeated load of %s changed family", path)
			}
		}
	})
}
