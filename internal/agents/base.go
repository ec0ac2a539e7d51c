// Package agents provides rule-based reference implementations of the
// four decision provider slots. They exist so the worker and demo run
// end to end without an external model; the orchestration core depends
// only on the domain interfaces and never on these rules.
package agents

import "github.com/stwomack/temporal-ecommerce-agent/internal/domain"

func newDecision(agentName, decision string, confidence float64, reasoning, nextAction string, requiresHuman bool) domain.Decision {
	return domain.Decision{
		AgentName:                 agentName,
		Decision:                  decision,
		Confidence:                confidence,
		Reasoning:                 reasoning,
		NextAction:                nextAction,
		RequiresHumanIntervention: requiresHuman,
	}
}
