package rules

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasicredit/lending-engine/internal/domain"
)

func TestNewStore_RejectsInvalidRules(t *testing.T) {
	invalid := domain.DefaultRules()
	invalid.Interest.Limits.MinimumRate = decimal.NewFromInt(99)

	_, err := NewStore(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_RULES")
}

func TestSwap_KeepsPreviousRulesOnFailure(t *testing.T) {
	store, err := NewStore(domain.DefaultRules())
	require.NoError(t, err)
	before := store.Active()

	invalid := domain.DefaultRules()
	invalid.Interest.RiskBands = nil

	require.Error(t, store.Swap(invalid))
	assert.Same(t, before, store.Active())
}

func TestSwap_ReplacesWholePointer(t *testing.T) {
	store, err := NewStore(domain.DefaultRules())
	require.NoError(t, err)

	updated := domain.DefaultRules()
	updated.MaxLoanAmount = decimal.NewFromInt(200000)

	require.NoError(t, store.Swap(updated))
	assert.Same(t, updated, store.Active())
}

// Concurrent readers must always observe a complete rule set while swaps are
// happening.
func TestStore_ConcurrentSwapAndRead(t *testing.T) {
	store, err := NewStore(domain.DefaultRules())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NoError(t, store.Swap(domain.DefaultRules()))
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				active := store.Active()
				assert.NoError(t, active.Validate())
			}
		}()
	}
	wg.Wait()
}
