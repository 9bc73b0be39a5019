// Package astjson decodes the upstream parser's JSON dump of a template
// file into ast nodes. The engine never parses template source text; this
// codec is the driver's input surface. Declared type names are resolved
// through the registry, and variable references are linked back to their
// declarations while decoding.
package astjson

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
	"github.com/sgammon/closure-templates-sub000/internal/source"
	"github.com/sgammon/closure-templates-sub000/internal/types/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fileDump struct {
	Path      string         `json:"path"`
	Namespace string         `json:"namespace"`
	Functions []functionDump `json:"functions"`
	Templates []templateDump `json:"templates"`
}

type functionDump struct {
	Name       string          `json:"name"`
	Signatures []signatureDump `json:"signatures"`
}

type signatureDump struct {
	Params []string `json:"params"`
	Return string   `json:"return"`
}

type templateDump struct {
	Name   string                `json:"name"`
	Loc    *locDump              `json:"loc"`
	Params []paramDump           `json:"params"`
	Body   []jsoniter.RawMessage `json:"body"`
}

type paramDump struct {
	Name     string              `json:"name"`
	Kind     string              `json:"kind"` // param | state | inject
	Type     string              `json:"type"` // "" when inferred from default
	Optional bool                `json:"optional"`
	Default  jsoniter.RawMessage `json:"default"`
	Loc      *locDump            `json:"loc"`
}

type locDump struct {
	Line    int `json:"line"`
	Col     int `json:"col"`
	EndLine int `json:"endLine"`
	EndCol  int `json:"endCol"`
}

// decoder carries the registry, the file path for locations, the declared
// functions and the lexical scope stack used to link variable references.
type decoder struct {
	reg       *registry.TypeRegistry
	path      *string
	functions map[string]*ast.FunctionDecl
	scopes    []map[string]*ast.VarDefn
}

// DecodeFile reads one JSON-serialized template file.
func DecodeFile(r io.Reader, reg *registry.TypeRegistry) (*ast.TemplateFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading template dump")
	}
	var dump fileDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, errors.Wrap(err, "decoding template dump")
	}

	d := &decoder{
		reg:       reg,
		path:      &dump.Path,
		functions: make(map[string]*ast.FunctionDecl, len(dump.Functions)),
	}
	for _, fn := range dump.Functions {
		decl := &ast.FunctionDecl{Name: fn.Name}
		for _, sig := range fn.Signatures {
			decl.Signatures = append(decl.Signatures, &ast.Signature{
				ParamTypes: sig.Params,
				ReturnType: sig.Return,
			})
		}
		d.functions[fn.Name] = decl
	}

	file := &ast.TemplateFile{Path: dump.Path, Namespace: dump.Namespace}
	for _, t := range dump.Templates {
		tmpl, err := d.decodeTemplate(t)
		if err != nil {
			return nil, errors.Wrapf(err, "template %q", t.Name)
		}
		file.Templates = append(file.Templates, tmpl)
	}
	return file, nil
}

func (d *decoder) decodeTemplate(t templateDump) (*ast.Template, error) {
	tmpl := &ast.Template{Name: t.Name, Location: d.loc(t.Loc)}
	d.pushScope()
	defer d.popScope()

	for _, p := range t.Params {
		defn := &ast.VarDefn{
			Name:     p.Name,
			Optional: p.Optional,
			Location: d.loc(p.Loc),
		}
		switch p.Kind {
		case "state":
			defn.Kind = ast.StateVar
		case "inject":
			defn.Kind = ast.InjectedVar
		default:
			defn.Kind = ast.ParamVar
		}
		if p.Type != "" {
			declared, err := d.reg.ParseType(p.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "declared type of %q", p.Name)
			}
			defn.DeclaredType = declared
		}
		if len(p.Default) > 0 {
			dflt, err := d.decodeExpr(p.Default)
			if err != nil {
				return nil, errors.Wrapf(err, "default of %q", p.Name)
			}
			defn.Default = dflt
		}
		tmpl.Params = append(tmpl.Params, defn)
		d.declare(defn)
	}

	body, err := d.decodeStmts(t.Body)
	if err != nil {
		return nil, err
	}
	tmpl.Body = body
	return tmpl, nil
}

func (d *decoder) decodeStmts(raw []jsoniter.RawMessage) ([]ast.Stmt, error) {
	stmts := make([]ast.Stmt, 0, len(raw))
	for _, msg := range raw {
		stmt, err := d.decodeStmt(msg)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (d *decoder) decodeStmt(raw jsoniter.RawMessage) (ast.Stmt, error) {
	var head struct {
		Stmt string   `json:"stmt"`
		Loc  *locDump `json:"loc"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, errors.Wrap(err, "decoding statement head")
	}
	switch head.Stmt {
	case "print":
		var node struct {
			Value jsoniter.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		value, err := d.decodeExpr(node.Value)
		if err != nil {
			return nil, err
		}
		return &ast.PrintStmt{Value: value, Location: d.loc(head.Loc)}, nil

	case "let":
		var node struct {
			Var   string              `json:"var"`
			Type  string              `json:"type"`
			Value jsoniter.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		value, err := d.decodeExpr(node.Value)
		if err != nil {
			return nil, err
		}
		defn := &ast.VarDefn{Name: node.Var, Kind: ast.LetVar, Location: d.loc(head.Loc)}
		if node.Type != "" {
			declared, err := d.reg.ParseType(node.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "declared type of let %q", node.Var)
			}
			defn.DeclaredType = declared
		}
		d.declare(defn)
		return &ast.LetStmt{Var: defn, Value: value, Location: d.loc(head.Loc)}, nil

	case "if":
		var node struct {
			Branches []struct {
				Cond jsoniter.RawMessage   `json:"cond"`
				Body []jsoniter.RawMessage `json:"body"`
			} `json:"branches"`
			Else []jsoniter.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		stmt := &ast.IfStmt{Location: d.loc(head.Loc)}
		for _, b := range node.Branches {
			cond, err := d.decodeExpr(b.Cond)
			if err != nil {
				return nil, err
			}
			d.pushScope()
			body, err := d.decodeStmts(b.Body)
			d.popScope()
			if err != nil {
				return nil, err
			}
			stmt.Branches = append(stmt.Branches, ast.IfBranch{Cond: cond, Body: body})
		}
		if node.Else != nil {
			d.pushScope()
			elseBody, err := d.decodeStmts(node.Else)
			d.popScope()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBody
		}
		return stmt, nil

	case "switch":
		var node struct {
			Subject jsoniter.RawMessage `json:"subject"`
			Cases   []struct {
				Exprs []jsoniter.RawMessage `json:"exprs"`
				Body  []jsoniter.RawMessage `json:"body"`
			} `json:"cases"`
			Default []jsoniter.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		subject, err := d.decodeExpr(node.Subject)
		if err != nil {
			return nil, err
		}
		stmt := &ast.SwitchStmt{Subject: subject, Location: d.loc(head.Loc)}
		for _, cs := range node.Cases {
			var exprs []ast.Expr
			for _, msg := range cs.Exprs {
				e, err := d.decodeExpr(msg)
				if err != nil {
					return nil, err
				}
				exprs = append(exprs, e)
			}
			d.pushScope()
			body, err := d.decodeStmts(cs.Body)
			d.popScope()
			if err != nil {
				return nil, err
			}
			stmt.Cases = append(stmt.Cases, ast.SwitchCase{Exprs: exprs, Body: body})
		}
		if node.Default != nil {
			d.pushScope()
			dflt, err := d.decodeStmts(node.Default)
			d.popScope()
			if err != nil {
				return nil, err
			}
			stmt.Default = dflt
		}
		return stmt, nil

	case "for":
		var node struct {
			Var        string                `json:"var"`
			Collection jsoniter.RawMessage   `json:"collection"`
			Body       []jsoniter.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		collection, err := d.decodeExpr(node.Collection)
		if err != nil {
			return nil, err
		}
		defn := &ast.VarDefn{Name: node.Var, Kind: ast.LoopVar, Location: d.loc(head.Loc)}
		d.pushScope()
		d.declare(defn)
		body, err := d.decodeStmts(node.Body)
		d.popScope()
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Var: defn, Collection: collection, Body: body, Location: d.loc(head.Loc)}, nil

	default:
		return nil, errors.Errorf("unknown statement kind %q", head.Stmt)
	}
}

func (d *decoder) pushScope() {
	d.scopes = append(d.scopes, make(map[string]*ast.VarDefn))
}

func (d *decoder) popScope() {
	d.scopes = d.scopes[:len(d.scopes)-1]
}

func (d *decoder) declare(defn *ast.VarDefn) {
	d.scopes[len(d.scopes)-1][defn.Name] = defn
}

func (d *decoder) lookup(name string) *ast.VarDefn {
	for i := len(d.scopes) - 1; i >= 0; i-- {
		if defn, ok := d.scopes[i][name]; ok {
			return defn
		}
	}
	return nil
}

func (d *decoder) loc(l *locDump) source.Location {
	if l == nil {
		return source.Location{Filename: d.path}
	}
	return source.Location{
		Filename: d.path,
		Start:    &source.Position{Line: l.Line, Column: l.Col},
		End:      &source.Position{Line: l.EndLine, Column: l.EndCol},
	}
}
