package report

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/watchscout/availability"
)

// Highlighter marks results matching a boolean expression, for example
//
//	Available && hasProvider("Netflix")
//	!Available && Year < 1980
//	InLibrary || Degraded
type Highlighter struct {
	expression string
	program    *vm.Program
}

// CompileHighlight compiles a highlight expression. An empty expression
// yields a nil Highlighter, which matches nothing.
func CompileHighlight(expression string) (*Highlighter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	// Compile against a zero result so unknown identifiers are rejected up front
	program, err := expr.Compile(expression,
		expr.Env(newEnvironment(&availability.Result{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &HighlightError{
			Expression: expression,
			Err:        err,
		}
	}

	return &Highlighter{
		expression: expression,
		program:    program,
	}, nil
}

// Match evaluates the expression against a result
func (h *Highlighter) Match(res *availability.Result) bool {
	if h == nil {
		return false
	}

	out, err := expr.Run(h.program, newEnvironment(res))
	if err != nil {
		// a runtime failure on one result only means it isn't highlighted
		return false
	}

	// guaranteed by AsBool
	return out.(bool)
}

// Expression returns the compiled expression
func (h *Highlighter) Expression() string {
	if h == nil {
		return ""
	}
	return h.expression
}

func newEnvironment(res *availability.Result) map[string]any {
	env := make(map[string]any, 16)

	env["Title"] = res.Entry.Title
	env["Year"] = res.Entry.Year
	env["Slug"] = res.Entry.ExternalID
	env["Position"] = res.Entry.Position
	env["Providers"] = res.Providers
	env["Available"] = res.Available()
	env["Resolved"] = res.Resolved()
	env["InLibrary"] = res.InLibrary
	env["Degraded"] = res.Status == availability.StatusDegraded
	env["Skipped"] = res.Status == availability.StatusSkipped
	env["Region"] = res.Region

	providers := res.Providers
	env["hasProvider"] = func(name string) bool {
		for _, p := range providers {
			if strings.EqualFold(p, name) {
				return true
			}
		}
		return false
	}
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper

	return env
}
