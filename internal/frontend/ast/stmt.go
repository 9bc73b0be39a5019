package ast

import (
	"github.com/sgammon/closure-templates-sub000/internal/source"
)

// TemplateFile is the root of one parsed file
type TemplateFile struct {
	Path      string
	Namespace string
	Templates []*Template
	source.Location
}

func (f *TemplateFile) INode()                {}
func (f *TemplateFile) Loc() *source.Location { return &f.Location }

// Template is one `{template}` block with its header declarations
type Template struct {
	Name   string
	Params []*VarDefn // params, state vars and injected params, in header order
	Body   []Stmt
	source.Location
}

func (t *Template) INode()                {}
func (t *Template) Loc() *source.Location { return &t.Location }

// PrintStmt represents `{$expr}` print commands
type PrintStmt struct {
	Value Expr
	source.Location
}

func (p *PrintStmt) INode()                {}
func (p *PrintStmt) StmtNode()             {}
func (p *PrintStmt) Loc() *source.Location { return &p.Location }

// LetStmt represents `{let $x: expr /}`
type LetStmt struct {
	Var   *VarDefn
	Value Expr
	source.Location
}

func (l *LetStmt) INode()                {}
func (l *LetStmt) StmtNode()             {}
func (l *LetStmt) Loc() *source.Location { return &l.Location }

// IfBranch is one `{if}`/`{elseif}` arm
type IfBranch struct {
	Cond Expr
	Body []Stmt
}

// IfStmt represents an `{if}...{elseif}...{else}...{/if}` chain
type IfStmt struct {
	Branches []IfBranch
	Else     []Stmt // nil when there is no {else}
	source.Location
}

func (i *IfStmt) INode()                {}
func (i *IfStmt) StmtNode()             {}
func (i *IfStmt) Loc() *source.Location { return &i.Location }

// SwitchCase is one `{case expr, expr, ...}` arm
type SwitchCase struct {
	Exprs []Expr
	Body  []Stmt
}

// SwitchStmt represents `{switch}...{case}...{default}...{/switch}`
type SwitchStmt struct {
	Subject Expr
	Cases   []SwitchCase
	Default []Stmt // nil when there is no {default}
	source.Location
}

func (s *SwitchStmt) INode()                {}
func (s *SwitchStmt) StmtNode()             {}
func (s *SwitchStmt) Loc() *source.Location { return &s.Location }

// ForStmt represents `{for $x in $collection}...{/for}`
type ForStmt struct {
	Var        *VarDefn // LoopVar; its DeclaredType is derived from Collection
	Collection Expr
	Body       []Stmt
	source.Location
}

func (f *ForStmt) INode()                {}
func (f *ForStmt) StmtNode()             {}
func (f *ForStmt) Loc() *source.Location { return &f.Location }
