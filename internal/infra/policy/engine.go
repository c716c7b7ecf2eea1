// Package policy evaluates audit results against an operator-supplied
// rego bundle, deciding whether a result should raise an alert. The
// watcher logs (and the status API exposes) whatever the policy decides;
// the verification core never consults it.
package policy

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"plexi/internal/domain"
)

const defaultQuery = "data.plexi.alert.result"

// Input is the document handed to the rego query for one audit result.
type Input struct {
	Namespace    string         `json:"namespace"`
	Epoch        uint64         `json:"epoch"`
	Digest       string         `json:"digest"`
	Signature    domain.Outcome `json:"signature_verification"`
	Proof        domain.Outcome `json:"proof_verification"`
	Valid        bool           `json:"valid"`
	Reason       string         `json:"reason,omitempty"`
	Equivocation bool           `json:"equivocation"`
}

// Decision is the policy's verdict.
type Decision struct {
	Alert   bool     `json:"alert"`
	Reasons []string `json:"reasons,omitempty"`
}

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngineFromBundlePath loads and compiles the rego bundle at the
// given path and prepares the alert query.
func NewEngineFromBundlePath(ctx context.Context, bundlePath string) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{bundlePath}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	if e == nil {
		return Decision{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{}, errors.New("empty policy result")
	}
	decision, err := decodeDecision(results[0].Expressions[0].Value)
	if err != nil {
		return Decision{}, err
	}
	sort.Strings(decision.Reasons)
	return decision, nil
}

// Decide adapts Evaluate to the watcher's alert hook.
func (e *Engine) Decide(ctx context.Context, result domain.AuditResult, equivocation bool) (bool, []string, error) {
	decision, err := e.Evaluate(ctx, InputFromResult(result, equivocation))
	if err != nil {
		return false, nil, err
	}
	return decision.Alert, decision.Reasons, nil
}

// InputFromResult maps an audit result onto the policy input document.
func InputFromResult(result domain.AuditResult, equivocation bool) Input {
	return Input{
		Namespace:    result.Namespace,
		Epoch:        uint64(result.Epoch),
		Digest:       result.Digest.String(),
		Signature:    result.Signature,
		Proof:        result.Proof,
		Valid:        result.Valid(),
		Reason:       result.Reason,
		Equivocation: equivocation,
	}
}

func decodeDecision(value any) (Decision, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return Decision{}, err
	}
	var decision Decision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return Decision{}, err
	}
	return decision, nil
}
