package provision

import "fmt"

// PlanLimits are the fixed per-plan caps applied to a provisioned
// sub-account. The table is static configuration, not database state.
type PlanLimits struct {
	Plan        string
	MaxContacts int
	MaxUsers    int
	SMSCredits  int
}

var planTable = map[string]PlanLimits{
	"starter":    {Plan: "starter", MaxContacts: 1_000, MaxUsers: 2, SMSCredits: 250},
	"pro":        {Plan: "pro", MaxContacts: 25_000, MaxUsers: 10, SMSCredits: 2_500},
	"enterprise": {Plan: "enterprise", MaxContacts: 250_000, MaxUsers: 100, SMSCredits: 25_000},
}

// LimitsFor resolves a plan name against the fixed table.
func LimitsFor(plan string) (PlanLimits, error) {
	l, ok := planTable[plan]
	if !ok {
		return PlanLimits{}, fmt.Errorf("unknown plan %q", plan)
	}
	return l, nil
}
