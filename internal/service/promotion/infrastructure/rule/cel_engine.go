package rule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"printexpress/internal/service/promotion/domain"
)

// CELRuleEngine evaluates coupon eligibility rules written as CEL
// expressions, e.g. `total_pages >= 50 && fulfillment == "delivery"`.
// It implements domain.RuleEngine.
type CELRuleEngine struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELRuleEngine builds the evaluation environment with the order fact
// variables coupon rules may reference.
func NewCELRuleEngine() (*CELRuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("user_id", cel.StringType),
		cel.Variable("total_pages", cel.IntType),
		cel.Variable("fulfillment", cel.StringType),
		cel.Variable("order_amount", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &CELRuleEngine{env: env, programs: make(map[string]cel.Program)}, nil
}

// Evaluate compiles (with caching) and runs a rule against the fact. A rule
// that does not produce a boolean is an error.
func (e *CELRuleEngine) Evaluate(rule string, fact domain.Fact) (bool, error) {
	prg, err := e.program(rule)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"user_id":      fact.UserID,
		"total_pages":  int64(fact.TotalPages),
		"fulfillment":  fact.Fulfillment,
		"order_amount": fact.OrderAmount,
	})
	if err != nil {
		return false, fmt.Errorf("rule evaluation failed: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule did not evaluate to a boolean: %T", out.Value())
	}
	return result, nil
}

func (e *CELRuleEngine) program(rule string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[rule]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, iss := e.env.Compile(rule)
	if iss.Err() != nil {
		return nil, fmt.Errorf("invalid eligibility rule: %w", iss.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}

	e.mu.Lock()
	e.programs[rule] = prg
	e.mu.Unlock()
	return prg, nil
}
