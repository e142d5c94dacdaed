package memory_test

import (
	"testing"

	"github.com/aretw0/launchtree/pkg/adapters/memory"
	"github.com/aretw0/launchtree/pkg/ports"
)

func TestMemoryCache_Contract(t *testing.T) {
	cache := memory.NewCache()
	ports.RunResultCacheContract(t, cache)
}
