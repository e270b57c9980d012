package policy

import (
	"fmt"

	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// CELPolicy evaluates the paid and admin gates as CEL expressions over
// a `user` map with uid, email, role and paid keys.
type CELPolicy struct {
	paid  cel.Program
	admin cel.Program
}

var _ repository.AccessPolicy = (*CELPolicy)(nil)

func NewCELPolicy(cfg *config.Config) (*CELPolicy, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("user", decls.NewMapType(decls.String, decls.Dyn)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	paid, err := compile(env, cfg.PaidAccessRule)
	if err != nil {
		return nil, fmt.Errorf("paid access rule: %w", err)
	}
	admin, err := compile(env, cfg.AdminAccessRule)
	if err != nil {
		return nil, fmt.Errorf("admin access rule: %w", err)
	}
	return &CELPolicy{paid: paid, admin: admin}, nil
}

func compile(env *cel.Env, expression string) (cel.Program, error) {
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType && ast.OutputType() != cel.DynType {
		return nil, fmt.Errorf("expression %q must return bool, got %s", expression, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return program, nil
}

func (p *CELPolicy) AllowPaid(session *model.Session) (bool, error) {
	return eval(p.paid, session)
}

func (p *CELPolicy) AllowAdmin(session *model.Session) (bool, error) {
	return eval(p.admin, session)
}

func eval(program cel.Program, session *model.Session) (bool, error) {
	if session == nil {
		return false, nil
	}
	out, _, err := program.Eval(map[string]interface{}{
		"user": map[string]interface{}{
			"uid":   session.UID,
			"email": session.Email,
			"role":  session.Role,
			"paid":  session.Paid,
		},
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean value")
	}
	return allowed, nil
}
