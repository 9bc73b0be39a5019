package astjson

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/sgammon/closure-templates-sub000/internal/frontend/ast"
)

var binaryOps = map[string]ast.BinaryOp{
	"+":   ast.OpPlus,
	"-":   ast.OpMinus,
	"*":   ast.OpTimes,
	"/":   ast.OpDiv,
	"%":   ast.OpMod,
	"<":   ast.OpLess,
	"<=":  ast.OpLessEq,
	">":   ast.OpGreater,
	">=":  ast.OpGreaterEq,
	"==":  ast.OpEqual,
	"!=":  ast.OpNotEqual,
	"and": ast.OpAnd,
	"or":  ast.OpOr,
}

func (d *decoder) decodeExpr(raw jsoniter.RawMessage) (ast.Expr, error) {
	var head struct {
		Expr string   `json:"expr"`
		Loc  *locDump `json:"loc"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, errors.Wrap(err, "decoding expression head")
	}
	loc := d.loc(head.Loc)

	switch head.Expr {
	case "null":
		return &ast.NullLiteral{Location: loc}, nil

	case "bool":
		var node struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		return &ast.BoolLiteral{Value: node.Value, Location: loc}, nil

	case "int":
		var node struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		return &ast.IntLiteral{Value: node.Value, Location: loc}, nil

	case "float":
		var node struct {
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		return &ast.FloatLiteral{Value: node.Value, Location: loc}, nil

	case "string":
		var node struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: node.Value, Location: loc}, nil

	case "var":
		var node struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		return &ast.VarRef{Name: node.Name, Defn: d.lookup(node.Name), Location: loc}, nil

	case "global":
		var node struct {
			Name string `json:"name"`
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		ref := &ast.GlobalRef{Name: node.Name, Location: loc}
		if node.Type != "" {
			t, err := d.reg.ParseType(node.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "type of global %q", node.Name)
			}
			ref.Type = t
		}
		return ref, nil

	case "list":
		var node struct {
			Items []jsoniter.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		lit := &ast.ListLiteral{Location: loc}
		for _, msg := range node.Items {
			item, err := d.decodeExpr(msg)
			if err != nil {
				return nil, err
			}
			lit.Items = append(lit.Items, item)
		}
		return lit, nil

	case "record":
		var node struct {
			Fields []struct {
				Key   string              `json:"key"`
				Value jsoniter.RawMessage `json:"value"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		lit := &ast.RecordLiteral{Location: loc}
		for _, f := range node.Fields {
			value, err := d.decodeExpr(f.Value)
			if err != nil {
				return nil, err
			}
			lit.Fields = append(lit.Fields, ast.RecordField{Key: f.Key, Value: value})
		}
		return lit, nil

	case "map":
		var node struct {
			Entries []struct {
				Key   jsoniter.RawMessage `json:"key"`
				Value jsoniter.RawMessage `json:"value"`
			} `json:"entries"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		lit := &ast.MapLiteral{Location: loc}
		for _, e := range node.Entries {
			key, err := d.decodeExpr(e.Key)
			if err != nil {
				return nil, err
			}
			value, err := d.decodeExpr(e.Value)
			if err != nil {
				return nil, err
			}
			lit.Entries = append(lit.Entries, ast.MapEntry{Key: key, Value: value})
		}
		return lit, nil

	case "field":
		var node struct {
			Base     jsoniter.RawMessage `json:"base"`
			Field    string              `json:"field"`
			NullSafe bool                `json:"nullSafe"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		base, err := d.decodeExpr(node.Base)
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccess{Base: base, Field: node.Field, NullSafe: node.NullSafe, Location: loc}, nil

	case "item":
		var node struct {
			Base     jsoniter.RawMessage `json:"base"`
			Key      jsoniter.RawMessage `json:"key"`
			NullSafe bool                `json:"nullSafe"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		base, err := d.decodeExpr(node.Base)
		if err != nil {
			return nil, err
		}
		key, err := d.decodeExpr(node.Key)
		if err != nil {
			return nil, err
		}
		return &ast.ItemAccess{Base: base, Key: key, NullSafe: node.NullSafe, Location: loc}, nil

	case "not", "neg":
		var node struct {
			Operand jsoniter.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		operand, err := d.decodeExpr(node.Operand)
		if err != nil {
			return nil, err
		}
		op := ast.OpNot
		if head.Expr == "neg" {
			op = ast.OpNeg
		}
		return &ast.UnaryExpr{Op: op, X: operand, Location: loc}, nil

	case "binary":
		var node struct {
			Op    string              `json:"op"`
			Left  jsoniter.RawMessage `json:"left"`
			Right jsoniter.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		op, ok := binaryOps[node.Op]
		if !ok {
			return nil, errors.Errorf("unknown binary operator %q", node.Op)
		}
		left, err := d.decodeExpr(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.decodeExpr(node.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, X: left, Y: right, Location: loc}, nil

	case "conditional":
		var node struct {
			Cond jsoniter.RawMessage `json:"cond"`
			Then jsoniter.RawMessage `json:"then"`
			Else jsoniter.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		cond, err := d.decodeExpr(node.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.decodeExpr(node.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.decodeExpr(node.Else)
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalExpr{Cond: cond, Then: then, Else: els, Location: loc}, nil

	case "null_coalescing":
		var node struct {
			Value    jsoniter.RawMessage `json:"value"`
			Fallback jsoniter.RawMessage `json:"fallback"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		value, err := d.decodeExpr(node.Value)
		if err != nil {
			return nil, err
		}
		fallback, err := d.decodeExpr(node.Fallback)
		if err != nil {
			return nil, err
		}
		return &ast.NullCoalescingExpr{X: value, Fallback: fallback, Location: loc}, nil

	case "call":
		var node struct {
			Name string                `json:"name"`
			Args []jsoniter.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		call := &ast.FunctionCall{Name: node.Name, Decl: d.functions[node.Name], Location: loc}
		for _, msg := range node.Args {
			arg, err := d.decodeExpr(msg)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		return call, nil

	case "proto_init":
		var node struct {
			Type string `json:"type"`
			Args []struct {
				Name  string              `json:"name"`
				Value jsoniter.RawMessage `json:"value"`
				Loc   *locDump            `json:"loc"`
			} `json:"args"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		init := &ast.ProtoInit{TypeName: node.Type, Location: loc}
		for _, a := range node.Args {
			value, err := d.decodeExpr(a.Value)
			if err != nil {
				return nil, err
			}
			init.Args = append(init.Args, ast.ProtoInitArg{Name: a.Name, Value: value, Location: d.loc(a.Loc)})
		}
		return init, nil

	case "ve":
		var node struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, err
		}
		return &ast.VeLiteral{Name: node.Name, Location: loc}, nil

	default:
		return nil, errors.Errorf("unknown expression kind %q", head.Expr)
	}
}
