// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package hclutil holds the HCL evaluation context and diagnostic helpers
// shared by the service configuration loader and the embedded layout catalog.
package hclutil

import (
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var (
	defaultLookupEnv = os.LookupEnv
	// lookupEnv is swapped in tests.
	lookupEnv = defaultLookupEnv
)

// EnvFunc returns the value of an environment variable. An optional second
// argument is returned when the variable is unset.
var EnvFunc = function.New(&function.Spec{
	Description: "Returns the value of an environment variable, or the given default when it is unset.",
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	VarParam: &function.Parameter{Name: "default", Type: cty.String},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		if v, ok := lookupEnv(args[0].AsString()); ok {
			return cty.StringVal(v), nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return cty.StringVal(""), nil
	},
})

// EvalContext returns a fresh evaluation context exposing env() and a small
// subset of the go-cty standard library.
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env":    EnvFunc,
			"format": stdlib.FormatFunc,
			"lower":  stdlib.LowerFunc,
			"upper":  stdlib.UpperFunc,
			"range":  stdlib.RangeFunc,
		},
	}
}

// ErrorDiagnostic builds a single error diagnostic pointing at subject.
func ErrorDiagnostic(summary, detail string, subject *hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  subject,
	}
}
