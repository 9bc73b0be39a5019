package ast

// WalkExprs calls fn for e and every expression nested inside it, parents
// before children. A nil expression is skipped.
func WalkExprs(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch n := e.(type) {
	case *ListLiteral:
		for _, item := range n.Items {
			WalkExprs(item, fn)
		}
	case *RecordLiteral:
		for _, field := range n.Fields {
			WalkExprs(field.Value, fn)
		}
	case *MapLiteral:
		for _, entry := range n.Entries {
			WalkExprs(entry.Key, fn)
			WalkExprs(entry.Value, fn)
		}
	case *FieldAccess:
		WalkExprs(n.Base, fn)
	case *ItemAccess:
		WalkExprs(n.Base, fn)
		WalkExprs(n.Key, fn)
	case *UnaryExpr:
		WalkExprs(n.X, fn)
	case *BinaryExpr:
		WalkExprs(n.X, fn)
		WalkExprs(n.Y, fn)
	case *ConditionalExpr:
		WalkExprs(n.Cond, fn)
		WalkExprs(n.Then, fn)
		WalkExprs(n.Else, fn)
	case *NullCoalescingExpr:
		WalkExprs(n.X, fn)
		WalkExprs(n.Fallback, fn)
	case *FunctionCall:
		for _, arg := range n.Args {
			WalkExprs(arg, fn)
		}
	case *ProtoInit:
		for _, arg := range n.Args {
			WalkExprs(arg.Value, fn)
		}
	}
}

// WalkStmtExprs calls fn for every expression reachable from the statement
// list, including expressions nested in child statements.
func WalkStmtExprs(stmts []Stmt, fn func(Expr)) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *PrintStmt:
			WalkExprs(n.Value, fn)
		case *LetStmt:
			WalkExprs(n.Value, fn)
		case *IfStmt:
			for _, branch := range n.Branches {
				WalkExprs(branch.Cond, fn)
				WalkStmtExprs(branch.Body, fn)
			}
			WalkStmtExprs(n.Else, fn)
		case *SwitchStmt:
			WalkExprs(n.Subject, fn)
			for _, c := range n.Cases {
				for _, e := range c.Exprs {
					WalkExprs(e, fn)
				}
				WalkStmtExprs(c.Body, fn)
			}
			WalkStmtExprs(n.Default, fn)
		case *ForStmt:
			WalkExprs(n.Collection, fn)
			WalkStmtExprs(n.Body, fn)
		}
	}
}
