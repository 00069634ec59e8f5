// Package gate decides which branch of a conditional view to render based on
// the validation results attached to a request.
package gate

import "github.com/openkraft/schemactl/internal/domain"

// Branch is the outcome of an evaluation.
type Branch int

const (
	Else Branch = iota
	Then
)

func (b Branch) String() string {
	if b == Then {
		return "then"
	}
	return "else"
}

// Evaluate returns Then when the results narrowed to forPath hold at least
// one error. A nil tree always yields Else; an empty forPath checks the root.
func Evaluate(results *domain.Result, forPath string) Branch {
	if results == nil {
		return Else
	}
	if results.ForProperty(forPath).HasErrors() {
		return Then
	}
	return Else
}

// EvaluateRequest evaluates the submitted argument validation results of req.
func EvaluateRequest(req domain.Request, forPath string) Branch {
	if req == nil {
		return Else
	}
	results, _ := req.InternalArgument(domain.SubmittedValidationResults).(*domain.Result)
	return Evaluate(results, forPath)
}

// Children renders the two branches of a conditional.
type Children interface {
	RenderThenChild() (string, error)
	RenderElseChild() (string, error)
}

// Render evaluates req and renders the matching child.
func Render(req domain.Request, forPath string, children Children) (string, error) {
	if EvaluateRequest(req, forPath) == Then {
		return children.RenderThenChild()
	}
	return children.RenderElseChild()
}

// StaticChildren renders fixed strings, as used by inline conditionals such as
// class="{ifHasErrors(for: 'blog.title', then: 'has-error')}".
type StaticChildren struct {
	Then string
	Else string
}

func (c StaticChildren) RenderThenChild() (string, error) { return c.Then, nil }
func (c StaticChildren) RenderElseChild() (string, error) { return c.Else, nil }
