package policy

import (
	"context"
	"fmt"
	"sort"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/topdown/print"
)

const captureQuery = "data.capture"

// regoPrintHook sends Rego print() output to the logger of the evaluation context
type regoPrintHook struct {
	ctx context.Context
}

func (h *regoPrintHook) Print(pctx print.Context, message string) error {
	logging.From(h.ctx).Debug("rego print", "message", message)
	return nil
}

// Capture evaluates the `capture` package against every note before it is
// ingested. The package denies a note by adding reasons to its `deny` set:
//
//	package capture
//
//	deny contains "notes must not contain credentials" if {
//		contains(lower(input.text), "password")
//	}
type Capture struct {
	query *rego.PreparedEvalQuery
}

// NewCapture loads the Rego files in policyDir. A directory without policy
// files yields a Capture that allows every note.
func NewCapture(ctx context.Context, policyDir string) (*Capture, error) {
	modules, err := loadModules(policyDir)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		logging.From(ctx).Warn("no capture policy found", "dir", policyDir)
		return &Capture{}, nil
	}

	query, err := prepareQuery(ctx, modules, captureQuery)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare capture query")
	}

	return &Capture{query: query}, nil
}

// Evaluate returns the reasons why the note must not be stored
func (c *Capture) Evaluate(ctx context.Context, text string, source model.Source) ([]string, error) {
	if c.query == nil {
		return nil, nil
	}

	input := map[string]any{
		"text":   text,
		"source": string(source),
	}

	rs, err := c.query.Eval(ctx, rego.EvalInput(input), rego.EvalPrintHook(&regoPrintHook{ctx: ctx}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate capture policy")
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, nil
	}

	data, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, goerr.New("invalid capture result: not an object", goerr.V("value", rs[0].Expressions[0].Value))
	}

	denyData, ok := data["deny"]
	if !ok {
		return nil, nil
	}

	items, ok := denyData.([]any)
	if !ok {
		return nil, goerr.New("invalid capture result: deny is not a set", goerr.V("deny", denyData))
	}

	reasons := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			reasons = append(reasons, s)
		} else {
			reasons = append(reasons, fmt.Sprint(item))
		}
	}
	sort.Strings(reasons)

	return reasons, nil
}
