package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"fieldtel/pkg/telemetry"
)

// Policy is a compiled CEL admission expression evaluated against each
// message after the whitelist check. Expressions see the message fields as
// top-level variables:
//
//	machineId == 7 && sequenceNumber < 100000
//	data.all(d, d.unit != "")
type Policy struct {
	expression string
	program    cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("machineId", cel.IntType),
		cel.Variable("sessionGuid", cel.StringType),
		cel.Variable("sequenceNumber", cel.IntType),
		cel.Variable("data", cel.ListType(cel.MapType(cel.StringType, cel.StringType))),
	)
}

// Compile parses and type-checks the expression. The expression must
// produce a bool.
func Compile(expression string) (*Policy, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile policy expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("policy expression must evaluate to bool, got %s", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build policy program: %w", err)
	}

	return &Policy{
		expression: expression,
		program:    program,
	}, nil
}

// Allow evaluates the policy against the message.
func (p *Policy) Allow(msg *telemetry.Message) (bool, error) {
	data := make([]map[string]string, 0, len(msg.Data))
	for _, record := range msg.Data {
		data = append(data, map[string]string{
			"type":  record.Type.String(),
			"unit":  record.Unit,
			"value": record.Value,
		})
	}

	result, _, err := p.program.Eval(map[string]interface{}{
		"machineId":      msg.MachineID,
		"sessionGuid":    msg.SessionGUID,
		"sequenceNumber": msg.SequenceNumber,
		"data":           data,
	})
	if err != nil {
		return false, fmt.Errorf("policy evaluation failed: %w", err)
	}

	allowed, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy expression returned non-bool value %v", result.Value())
	}

	return allowed, nil
}

// Expression returns the source expression.
func (p *Policy) Expression() string {
	return p.expression
}
