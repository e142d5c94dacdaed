package launch

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/scope"
)

// Text is a literal substitution token.
type Text string

func (t Text) Describe() string { return string(t) }

// Call is a "$(name args...)" substitution token. Arguments are substitutions themselves.
type Call struct {
	Name string
	Args []domain.Substitution
	// File is the fragment the token was parsed from, used by dirname and filename.
	File string
}

func (c Call) Describe() string {
	var b strings.Builder
	b.WriteString("$(")
	b.WriteString(c.Name)
	for _, arg := range c.Args {
		b.WriteByte(' ')
		text := arg.Describe()
		if text == "" || spacedText(arg) {
			text = "'" + text + "'"
		}
		b.WriteString(text)
	}
	b.WriteByte(')')
	return b.String()
}

// spacedText reports whether a literal part of s holds whitespace.
// Nested calls are rendered unquoted.
func spacedText(s domain.Substitution) bool {
	for _, tok := range s {
		switch t := tok.(type) {
		case Text:
			if strings.ContainsAny(string(t), " \t") {
				return true
			}
		case domain.Substitution:
			if spacedText(t) {
				return true
			}
		}
	}
	return false
}

// Lit returns a substitution holding literal text.
func Lit(s string) domain.Substitution {
	if s == "" {
		return nil
	}
	return domain.Substitution{Text(s)}
}

// VarRef returns a "$(var name)" substitution.
func VarRef(name string) domain.Substitution {
	return domain.Substitution{Call{Name: "var", Args: []domain.Substitution{Lit(name)}}}
}

// SubstitutionFunc resolves one call. Arguments are already resolved.
type SubstitutionFunc func(e *Engine, c *scope.Context, call Call, args []string) (string, error)

func defaultSubstitutions() map[string]SubstitutionFunc {
	return map[string]SubstitutionFunc{
		"var":             substVar,
		"env":             substEnv,
		"optenv":          substOptEnv,
		"find-pkg-share":  substPkgShare,
		"find-pkg-prefix": substPkgPrefix,
		"anon":            substAnon,
		"dirname":         substDirname,
		"filename":        substFilename,
		"not":             substNot,
		"and":             substAnd,
		"or":              substOr,
		"equals":          substEquals,
		"not-equals":      substNotEquals,
		"eval":            substUnsupported,
		"command":         substUnsupported,
		"find-exec":       substUnsupported,
		"exec-in-pkg":     substUnsupported,
	}
}

// ResolveSubstitution resolves every token of s against the scope.
func (e *Engine) ResolveSubstitution(c *scope.Context, s domain.Substitution) (string, error) {
	var b strings.Builder
	for _, tok := range s {
		switch t := tok.(type) {
		case Text:
			b.WriteString(string(t))
		case Call:
			v, err := e.resolveCall(c, t)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		case domain.Substitution:
			v, err := e.ResolveSubstitution(c, t)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		default:
			return "", &SubstitutionError{Expr: tok.Describe(), Err: fmt.Errorf("%w: token %T", ErrUnknownSubstitution, tok)}
		}
	}
	return b.String(), nil
}

func (e *Engine) resolveCall(c *scope.Context, call Call) (string, error) {
	fn, ok := e.funcs[call.Name]
	if !ok {
		return "", &SubstitutionError{Expr: call.Describe(), Err: fmt.Errorf("%w: %s", ErrUnknownSubstitution, call.Name)}
	}
	args := make([]string, len(call.Args))
	for i, arg := range call.Args {
		v, err := e.ResolveSubstitution(c, arg)
		if err != nil {
			return "", err
		}
		args[i] = v
	}
	v, err := fn(e, c, call, args)
	if err != nil {
		return "", &SubstitutionError{Expr: call.Describe(), Err: err}
	}
	return v, nil
}

// resolveOptional resolves s, returning "" for an empty substitution.
func (e *Engine) resolveOptional(c *scope.Context, s domain.Substitution) (string, error) {
	if s.IsZero() {
		return "", nil
	}
	return e.ResolveSubstitution(c, s)
}

func arity(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("expected %d argument(s), got %d", lo, len(args))
		}
		return fmt.Errorf("expected %d to %d arguments, got %d", lo, hi, len(args))
	}
	return nil
}

func substVar(_ *Engine, c *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 1, 2); err != nil {
		return "", err
	}
	if v, ok := c.Lookup(args[0]); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrUndefinedVariable, args[0])
}

func substEnv(_ *Engine, c *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 1, 2); err != nil {
		return "", err
	}
	if v, ok := c.Getenv(args[0]); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return "", fmt.Errorf("environment variable %q not set", args[0])
}

func substOptEnv(_ *Engine, c *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 1, 2); err != nil {
		return "", err
	}
	if v, ok := c.Getenv(args[0]); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return "", nil
}

func substPkgShare(e *Engine, _ *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 1, 1); err != nil {
		return "", err
	}
	if e.packages == nil {
		return "", fmt.Errorf("no package resolver to find %q", args[0])
	}
	return e.packages.PackageShare(args[0])
}

func substPkgPrefix(e *Engine, _ *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 1, 1); err != nil {
		return "", err
	}
	if e.packages == nil {
		return "", fmt.Errorf("no package resolver to find %q", args[0])
	}
	return e.packages.PackagePrefix(args[0])
}

func substAnon(_ *Engine, c *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 1, 1); err != nil {
		return "", err
	}
	return c.Anon(args[0]), nil
}

func substDirname(_ *Engine, _ *scope.Context, call Call, args []string) (string, error) {
	if err := arity(args, 0, 0); err != nil {
		return "", err
	}
	if call.File == "" {
		return "", fmt.Errorf("source file unknown")
	}
	return filepath.Dir(call.File), nil
}

func substFilename(_ *Engine, _ *scope.Context, call Call, args []string) (string, error) {
	if err := arity(args, 0, 0); err != nil {
		return "", err
	}
	if call.File == "" {
		return "", fmt.Errorf("source file unknown")
	}
	return filepath.Base(call.File), nil
}

func substNot(_ *Engine, _ *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 1, 1); err != nil {
		return "", err
	}
	v, err := parseBool(args[0])
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(!v), nil
}

func substAnd(_ *Engine, _ *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 2, 2); err != nil {
		return "", err
	}
	l, err := parseBool(args[0])
	if err != nil {
		return "", err
	}
	r, err := parseBool(args[1])
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(l && r), nil
}

func substOr(_ *Engine, _ *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 2, 2); err != nil {
		return "", err
	}
	l, err := parseBool(args[0])
	if err != nil {
		return "", err
	}
	r, err := parseBool(args[1])
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(l || r), nil
}

func substEquals(_ *Engine, _ *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 2, 2); err != nil {
		return "", err
	}
	return strconv.FormatBool(looselyEqual(args[0], args[1])), nil
}

func substNotEquals(_ *Engine, _ *scope.Context, _ Call, args []string) (string, error) {
	if err := arity(args, 2, 2); err != nil {
		return "", err
	}
	return strconv.FormatBool(!looselyEqual(args[0], args[1])), nil
}

func substUnsupported(_ *Engine, _ *scope.Context, call Call, _ []string) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnsupportedSubstitution, call.Name)
}

// looselyEqual compares booleans and numbers by value and everything else as text.
func looselyEqual(a, b string) bool {
	if a == b {
		return true
	}
	if ab, err := parseBool(a); err == nil {
		if bb, err := parseBool(b); err == nil {
			return ab == bb
		}
	}
	af, errA := strconv.ParseFloat(a, 64)
	bf, errB := strconv.ParseFloat(b, 64)
	return errA == nil && errB == nil && af == bf
}
