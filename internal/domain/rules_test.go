package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_Valid(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())
}

func TestLendingRules_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*LendingRules)
		errorContains string
	}{
		{
			name: "Minimum rate above maximum rate",
			mutate: func(r *LendingRules) {
				r.Interest.Limits.MinimumRate = decimal.NewFromInt(30)
			},
			errorContains: "minimum_rate",
		},
		{
			name: "Non-monotonic tier boundaries",
			mutate: func(r *LendingRules) {
				r.Interest.Tiers.MediumMax = r.Interest.Tiers.SmallMax
			},
			errorContains: "medium_max",
		},
		{
			name: "Negative base rate",
			mutate: func(r *LendingRules) {
				r.Interest.BaseRates.Medium = decimal.NewFromInt(-1)
			},
			errorContains: "base_rates.medium",
		},
		{
			name: "Negative service fee",
			mutate: func(r *LendingRules) {
				r.Fees.MonthlyServiceFee = decimal.NewFromInt(-10)
			},
			errorContains: "monthly_service_fee",
		},
		{
			name: "No risk bands",
			mutate: func(r *LendingRules) {
				r.Interest.RiskBands = nil
			},
			errorContains: "risk band",
		},
		{
			name: "Constrained final band",
			mutate: func(r *LendingRules) {
				dti := decimal.NewFromInt(90)
				r.Interest.RiskBands[len(r.Interest.RiskBands)-1].MaxDTI = &dti
			},
			errorContains: "unconstrained",
		},
		{
			name: "Invalid term bounds",
			mutate: func(r *LendingRules) {
				r.Terms.Medium = TermBounds{MinMonths: 12, MaxMonths: 6}
			},
			errorContains: "medium",
		},
		{
			name: "Non-positive max loan amount",
			mutate: func(r *LendingRules) {
				r.MaxLoanAmount = decimal.Zero
			},
			errorContains: "max_loan_amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(rules)

			err := rules.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

// The rule tree round-trips through JSON unchanged, which is how it is
// persisted and hot-reloaded.
func TestLendingRules_JSONRoundTrip(t *testing.T) {
	original := DefaultRules()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded LendingRules
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.NoError(t, decoded.Validate())
	assert.True(t, decoded.MaxLoanAmount.Equal(original.MaxLoanAmount))
	assert.Len(t, decoded.Interest.RiskBands, len(original.Interest.RiskBands))
	require.NotNil(t, decoded.Interest.RiskBands[0].MaxDTI)
	assert.True(t, decoded.Interest.RiskBands[0].MaxDTI.Equal(*original.Interest.RiskBands[0].MaxDTI))
}

func TestSnapshotValidate(t *testing.T) {
	valid := func() *LoanApplicationSnapshot {
		return &LoanApplicationSnapshot{
			Principal:          decimal.NewFromInt(10000),
			TermMonths:         12,
			MonthlyGrossIncome: decimal.NewFromInt(9000),
			MonthlyNetIncome:   decimal.NewFromInt(7000),
		}
	}

	assert.NoError(t, valid().Validate())

	s := valid()
	s.Principal = decimal.Zero
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "principal")

	s = valid()
	s.TermMonths = -3
	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "term_months")

	s = valid()
	s.MonthlyGrossIncome = decimal.Zero
	s.MonthlyNetIncome = decimal.Zero
	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "income figures are required")

	s = valid()
	s.Expenses.Insurance = decimal.NewFromInt(-1)
	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expenses.insurance")
}
