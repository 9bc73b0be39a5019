package typechecker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/logging"
	"github.com/sgammon/closure-templates-sub000/internal/types"
	"github.com/sgammon/closure-templates-sub000/internal/types/registry"
)

func newTestChecker() (*Checker, *diagnostics.Bag, *registry.TypeRegistry) {
	bag := diagnostics.NewBag()
	reg := registry.New()
	return NewChecker(reg, logging.Empty(), bag), bag, reg
}

// checkTemplate runs the pass over a single synthetic template.
func checkTemplate(c *Checker, params []*ast.VarDefn, body ...ast.Stmt) {
	c.CheckFile(&ast.TemplateFile{
		Path: "test.soy",
		Templates: []*ast.Template{{
			Name:   ".t",
			Params: params,
			Body:   body,
		}},
	})
}

func param(name string, typ types.SoyType) *ast.VarDefn {
	return &ast.VarDefn{Name: name, Kind: ast.ParamVar, DeclaredType: typ}
}

// ref builds a fresh reference node for a declaration. Distinct calls yield
// distinct nodes, matching how a parser would allocate one node per mention.
func ref(defn *ast.VarDefn) *ast.VarRef {
	return &ast.VarRef{Name: defn.Name, Defn: defn}
}

func printStmt(e ast.Expr) *ast.PrintStmt { return &ast.PrintStmt{Value: e} }

func str(v string) *ast.StringLiteral { return &ast.StringLiteral{Value: v} }
func intLit(v int64) *ast.IntLiteral  { return &ast.IntLiteral{Value: v} }

func notNull(e ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: ast.OpNotEqual, X: e, Y: &ast.NullLiteral{}}
}

func isNullCheck(e ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: ast.OpEqual, X: e, Y: &ast.NullLiteral{}}
}

func nullableString() types.SoyType {
	return types.UnionOf(types.StringType, types.NullType)
}

// typeOf asserts that the pass resolved a type for the node.
func typeOf(t *testing.T, c *Checker, e ast.Expr) types.SoyType {
	t.Helper()
	typ, ok := c.TypeOf(e)
	require.True(t, ok, "no resolved type for %v", e)
	return typ
}

func diagnosticCodes(bag *diagnostics.Bag) []string {
	diags := bag.Diagnostics()
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}

// fakeSchema is a hand-rolled ProtoSchema for tests that do not need a real
// descriptor round trip.
type fakeSchema struct {
	name     string
	fields   map[string]types.SoyType
	order    []string
	required []string
	repeated map[string]bool
}

func (s *fakeSchema) Name() string { return s.name }

func (s *fakeSchema) FieldType(name string) (types.SoyType, bool) {
	t, ok := s.fields[name]
	return t, ok
}

func (s *fakeSchema) FieldNames() []string          { return s.order }
func (s *fakeSchema) RequiredFieldNames() []string  { return s.required }
func (s *fakeSchema) IsRepeatedField(n string) bool { return s.repeated[n] }

// profileProto registers a test message and returns its type:
//
//	message Profile { required string name; int64 age; repeated string tags; }
func profileProto(reg *registry.TypeRegistry) *types.ProtoType {
	proto := types.NewProto(&fakeSchema{
		name: "soy.test.Profile",
		fields: map[string]types.SoyType{
			"name": types.StringType,
			"age":  types.IntType,
			"tags": types.NewList(types.StringType),
		},
		order:    []string{"name", "age", "tags"},
		required: []string{"name"},
		repeated: map[string]bool{"tags": true},
	})
	reg.Register("soy.test.Profile", proto)
	return proto
}
