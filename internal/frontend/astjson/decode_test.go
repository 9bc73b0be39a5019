package astjson

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/types"
	"github.com/sgammon/closure-templates-sub000/internal/types/registry"
)

const sampleDump = `{
  "path": "greet.soy",
  "namespace": "soy.test.greet",
  "functions": [
    {
      "name": "formatNum",
      "signatures": [
        {"params": ["int"], "return": "string"},
        {"params": ["int", "string"], "return": "string"}
      ]
    }
  ],
  "templates": [
    {
      "name": ".hello",
      "loc": {"line": 1, "col": 1, "endLine": 20, "endCol": 1},
      "params": [
        {"name": "name", "kind": "param", "type": "string|null", "loc": {"line": 2, "col": 3, "endLine": 2, "endCol": 20}},
        {"name": "count", "kind": "param", "type": "", "default": {"expr": "int", "value": 1}},
        {"name": "theme", "kind": "inject", "type": "string"}
      ],
      "body": [
        {
          "stmt": "if",
          "loc": {"line": 4, "col": 1, "endLine": 8, "endCol": 6},
          "branches": [
            {
              "cond": {"expr": "binary", "op": "!=", "left": {"expr": "var", "name": "name"}, "right": {"expr": "null"}},
              "body": [
                {"stmt": "print", "value": {"expr": "var", "name": "name"}}
              ]
            }
          ],
          "else": [
            {"stmt": "print", "value": {"expr": "string", "value": "anonymous"}}
          ]
        },
        {
          "stmt": "let",
          "var": "greeting",
          "value": {"expr": "call", "name": "formatNum", "args": [{"expr": "var", "name": "count"}]}
        },
        {
          "stmt": "for",
          "var": "i",
          "collection": {"expr": "list", "items": [{"expr": "int", "value": 1}, {"expr": "int", "value": 2}]},
          "body": [
            {"stmt": "print", "value": {"expr": "var", "name": "i"}}
          ]
        }
      ]
    }
  ]
}`

func decodeSample(t *testing.T) *ast.TemplateFile {
	t.Helper()
	file, err := DecodeFile(strings.NewReader(sampleDump), registry.New())
	require.NoError(t, err)
	return file
}

func TestDecodeFile(t *testing.T) {
	file := decodeSample(t)

	assert.Equal(t, "greet.soy", file.Path)
	assert.Equal(t, "soy.test.greet", file.Namespace)
	require.Len(t, file.Templates, 1)

	tmpl := file.Templates[0]
	assert.Equal(t, ".hello", tmpl.Name)
	require.Len(t, tmpl.Params, 3)
	require.Len(t, tmpl.Body, 3)
}

func TestDecodeParams(t *testing.T) {
	tmpl := decodeSample(t).Templates[0]

	name := tmpl.Params[0]
	assert.Equal(t, ast.ParamVar, name.Kind)
	require.NotNil(t, name.DeclaredType)
	assert.True(t, types.UnionOf(types.StringType, types.NullType).Equals(name.DeclaredType))

	// An omitted type stays nil for inference from the default.
	count := tmpl.Params[1]
	assert.Nil(t, count.DeclaredType)
	require.NotNil(t, count.Default)
	lit, ok := count.Default.(*ast.IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value)

	theme := tmpl.Params[2]
	assert.Equal(t, ast.InjectedVar, theme.Kind)
}

func TestDecodeLinksVarRefs(t *testing.T) {
	tmpl := decodeSample(t).Templates[0]

	ifStmt, ok := tmpl.Body[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Branches, 1)

	cond, ok := ifStmt.Branches[0].Cond.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpNotEqual, cond.Op)

	condRef, ok := cond.X.(*ast.VarRef)
	require.True(t, ok)
	require.Same(t, tmpl.Params[0], condRef.Defn)

	// The reference in the branch body links to the same declaration.
	print0, ok := ifStmt.Branches[0].Body[0].(*ast.PrintStmt)
	require.True(t, ok)
	bodyRef, ok := print0.Value.(*ast.VarRef)
	require.True(t, ok)
	assert.Same(t, tmpl.Params[0], bodyRef.Defn)
}

func TestDecodeLinksFunctionDecls(t *testing.T) {
	tmpl := decodeSample(t).Templates[0]

	let, ok := tmpl.Body[1].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "greeting", let.Var.Name)
	assert.Equal(t, ast.LetVar, let.Var.Kind)

	call, ok := let.Value.(*ast.FunctionCall)
	require.True(t, ok)
	require.NotNil(t, call.Decl)
	assert.Equal(t, "formatNum", call.Decl.Name)
	require.Len(t, call.Decl.Signatures, 2)
	assert.Equal(t, []string{"int"}, call.Decl.Signatures[0].ParamTypes)
	assert.Equal(t, "string", call.Decl.Signatures[0].ReturnType)
}

func TestDecodeForLoop(t *testing.T) {
	tmpl := decodeSample(t).Templates[0]

	forStmt, ok := tmpl.Body[2].(*ast.ForStmt)
	require.True(t, ok)
	assert.Equal(t, ast.LoopVar, forStmt.Var.Kind)

	list, ok := forStmt.Collection.(*ast.ListLiteral)
	require.True(t, ok)
	assert.Len(t, list.Items, 2)

	print0, ok := forStmt.Body[0].(*ast.PrintStmt)
	require.True(t, ok)
	ref, ok := print0.Value.(*ast.VarRef)
	require.True(t, ok)
	assert.Same(t, forStmt.Var, ref.Defn)
}

func TestDecodeLocations(t *testing.T) {
	file := decodeSample(t)
	tmpl := file.Templates[0]

	loc := tmpl.Params[0].Loc()
	assert.Equal(t, "greet.soy", loc.File())
	require.NotNil(t, loc.Start)
	assert.Equal(t, 2, loc.Start.Line)
	assert.Equal(t, 3, loc.Start.Column)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"path": `},
		{"unknown statement", `{"path": "x", "templates": [{"name": ".t", "body": [{"stmt": "bogus"}]}]}`},
		{"unknown expression", `{"path": "x", "templates": [{"name": ".t", "body": [{"stmt": "print", "value": {"expr": "bogus"}}]}]}`},
		{"bad declared type", `{"path": "x", "templates": [{"name": ".t", "params": [{"name": "p", "kind": "param", "type": "nope"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFile(strings.NewReader(tt.input), registry.New())
			assert.Error(t, err)
		})
	}
}
