package compiler

import (
	"chalk/internal/ast"
	"chalk/internal/fault"
	"chalk/internal/parser"
	"chalk/internal/program"
	"chalk/internal/source"
	"chalk/internal/token"
)

// Options control compilation behavior beyond the language itself.
type Options struct {
	// ImplicitDecl lets an assignment to an unknown bare name synthesize
	// its own auto declaration instead of failing at run time. The REPL
	// turns this on; for-loop start clauses always behave this way.
	ImplicitDecl bool
}

type Compiler struct {
	opts    Options
	scopes  []map[string]bool // lexical declaration tracking, one map per block
	globals map[string]bool
}

// Compile turns normalized lines into an executable program: one lexing
// pass, block grouping, then per-node instruction compilation.
func Compile(lines []source.Line, settings source.Settings, opts Options) (*program.Program, error) {
	if settings.Bool("implicit-decl") {
		opts.ImplicitDecl = true
	}
	raw, err := lexLines(lines)
	if err != nil {
		return nil, err
	}
	nodes, err := buildRaw(raw)
	if err != nil {
		return nil, err
	}

	c := &Compiler{
		opts:    opts,
		scopes:  []map[string]bool{{}},
		globals: map[string]bool{},
	}
	body, err := c.compileNodes(nodes)
	if err != nil {
		return nil, err
	}

	stg := map[string]string(settings)
	if stg == nil {
		stg = map[string]string{}
	}
	return &program.Program{Body: body, Settings: stg}, nil
}

// CompileSource is the one-call path from raw text to a program.
func CompileSource(src string, opts Options) (*program.Program, error) {
	lines, settings, err := source.Normalize(src)
	if err != nil {
		return nil, err
	}
	return Compile(lines, settings, opts)
}

func (c *Compiler) pushScope() {
	c.scopes = append(c.scopes, map[string]bool{})
}

func (c *Compiler) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Compiler) declare(name string, global bool) {
	if global {
		c.globals[name] = true
		return
	}
	c.scopes[len(c.scopes)-1][name] = true
}

func (c *Compiler) known(name string) bool {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if c.scopes[i][name] {
			return true
		}
	}
	return c.globals[name]
}

func (c *Compiler) compileNodes(nodes []*rawNode) (*program.Sequence, error) {
	seq := &program.Sequence{}
	for _, node := range nodes {
		ins, err := c.compileNode(node)
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, ins)
	}
	return seq, nil
}

// compileNode dispatches on the leading token: trace, declaration,
// assignment, function definition, for, while, if, then bare call.
func (c *Compiler) compileNode(node *rawNode) (program.Instruction, error) {
	lead := node.line.toks[0]

	switch lead.Type {
	case token.TRACE:
		return c.compileTrace(node)
	case token.DECL, token.SAFE, token.OVERWRITE, token.CONST, token.GLOBAL:
		return c.compileDeclaration(node)
	case token.VAR:
		return c.compileAssignment(node)
	case token.FUNCTION:
		return c.compileFunctionDef(node)
	case token.FOR:
		return c.compileFor(node)
	case token.WHILE:
		return c.compileWhile(node)
	case token.IF:
		return c.compileIf(node)
	case token.RETURN, token.BREAK, token.CONTINUE:
		return c.compileControlCall(node)
	case token.IDENT:
		return c.compileVoidCall(node)
	case token.ELSE:
		return nil, fault.New(fault.Syntax, node.line.num, "else outside an if block")
	}
	return nil, fault.Errorf(fault.Syntax, node.line.num,
		"unexpected %q at start of statement", lead.Literal)
}

func (c *Compiler) compileTrace(node *rawNode) (program.Instruction, error) {
	toks := node.line.toks
	tr := &program.Trace{Line: node.line.num}

	i := 1
	for {
		if toks[i].Type != token.VAR {
			return nil, fault.New(fault.Syntax, node.line.num, "trace expects $variable names")
		}
		tr.Names = append(tr.Names, toks[i].Literal)
		i++
		if toks[i].Type == token.EOL {
			return tr, nil
		}
		if toks[i].Type != token.COMMA {
			return nil, fault.Errorf(fault.Syntax, node.line.num,
				"unexpected %q in trace directive", toks[i].Literal)
		}
		i++
	}
}

func (c *Compiler) compileDeclaration(node *rawNode) (program.Instruction, error) {
	toks := node.line.toks
	line := node.line.num
	decl := &program.Declaration{Line: line, Type: "auto"}

	i := 0
	for token.IsModifier(toks[i].Type) {
		var seen *bool
		switch toks[i].Type {
		case token.SAFE:
			seen = &decl.Safe
		case token.OVERWRITE:
			seen = &decl.Overwrite
		case token.CONST:
			seen = &decl.Const
		case token.GLOBAL:
			seen = &decl.Global
		}
		if *seen {
			return nil, fault.Errorf(fault.Syntax, line, "repeated %s modifier", toks[i].Literal)
		}
		*seen = true
		i++
	}
	if decl.Safe && decl.Overwrite {
		return nil, fault.New(fault.Syntax, line, "safe and overwrite cannot be combined")
	}
	if toks[i].Type != token.DECL {
		return nil, fault.Errorf(fault.Syntax, line, "expected decl, got %q", toks[i].Literal)
	}
	i++
	if toks[i].Type == token.TYPE {
		decl.Type = toks[i].Literal
		i++
	}

	for _, clause := range splitTop(toks[i:], token.COMMA) {
		if len(clause) == 0 || clause[0].Type != token.VAR {
			return nil, fault.New(fault.Syntax, line, "expected $variable in declaration")
		}
		v := program.DeclVar{Name: clause[0].Literal}
		if len(clause) > 1 {
			if clause[1].Type != token.ASSIGN {
				return nil, fault.Errorf(fault.Syntax, line, "expected = after $%s", v.Name)
			}
			if len(clause) == 2 {
				return nil, fault.Errorf(fault.Syntax, line, "missing initializer for $%s", v.Name)
			}
			init, err := parser.Parse(clause[2:])
			if err != nil {
				return nil, err
			}
			v.Init = init
		} else if decl.Type == "auto" {
			return nil, fault.Errorf(fault.Syntax, line,
				"auto declaration of $%s needs an initializer", v.Name)
		}
		decl.Vars = append(decl.Vars, v)
		c.declare(v.Name, decl.Global)
	}
	return decl, nil
}

func (c *Compiler) compileAssignment(node *rawNode) (program.Instruction, error) {
	toks := node.line.toks
	line := node.line.num
	name := toks[0].Literal

	i := 1
	var index []ast.Expression
	for toks[i].Type == token.LBRACKET {
		close, err := matchBracket(toks, i, line)
		if err != nil {
			return nil, err
		}
		if close == i+1 {
			return nil, fault.New(fault.Syntax, line, "empty index")
		}
		idx, err := parser.Parse(toks[i+1 : close])
		if err != nil {
			return nil, err
		}
		index = append(index, idx)
		i = close + 1
	}
	if toks[i].Type != token.ASSIGN {
		return nil, fault.Errorf(fault.Syntax, line, "expected = in assignment to $%s", name)
	}
	if toks[i+1].Type == token.EOL {
		return nil, fault.New(fault.Syntax, line, "missing value after =")
	}
	value, err := parser.Parse(toks[i+1:])
	if err != nil {
		return nil, err
	}

	if len(index) == 0 && !c.known(name) && c.opts.ImplicitDecl {
		// Unknown bare target: fold the write into a synthesized auto
		// declaration so the name exists from here on.
		c.declare(name, false)
		return &program.Declaration{
			Line: line, Type: "auto", Implicit: true,
			Vars: []program.DeclVar{{Name: name, Init: value}},
		}, nil
	}
	return &program.Assignment{Line: line, Name: name, Index: index, Value: value}, nil
}

func (c *Compiler) compileControlCall(node *rawNode) (program.Instruction, error) {
	toks := node.line.toks
	line := node.line.num
	lead := toks[0]
	call := &ast.CallExpression{
		Token: token.Token{Type: token.IDENT, Literal: lead.Literal, Line: line},
		Name:  lead.Literal,
	}

	if toks[1].Type != token.EOL {
		if lead.Type != token.RETURN {
			return nil, fault.Errorf(fault.Syntax, line, "%s takes no argument", lead.Literal)
		}
		if toks[1].Type != token.LPAREN {
			return nil, fault.New(fault.Syntax, line, "expected ( after return")
		}
		close, err := matchParen(toks, 1, line)
		if err != nil {
			return nil, err
		}
		if toks[close+1].Type != token.EOL {
			return nil, fault.Errorf(fault.Syntax, line,
				"unexpected %q after return(...)", toks[close+1].Literal)
		}
		if close > 2 {
			arg, err := parser.Parse(toks[2:close])
			if err != nil {
				return nil, err
			}
			call.Arguments = append(call.Arguments, arg)
		}
	}
	return &program.VoidCall{Line: line, Call: call}, nil
}

func (c *Compiler) compileVoidCall(node *rawNode) (program.Instruction, error) {
	expr, err := parser.Parse(node.line.toks)
	if err != nil {
		return nil, err
	}
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return nil, fault.New(fault.Syntax, node.line.num, "only calls can stand alone")
	}
	return &program.VoidCall{Line: node.line.num, Call: call}, nil
}

func (c *Compiler) compileWhile(node *rawNode) (program.Instruction, error) {
	cond, err := parser.Parse(node.line.toks[1:])
	if err != nil {
		return nil, err
	}

	c.pushScope()
	body, err := c.compileNodes(node.children)
	c.popScope()
	if err != nil {
		return nil, err
	}
	return &program.WhileLoop{Line: node.line.num, Cond: cond, Body: body}, nil
}

func (c *Compiler) compileIf(node *rawNode) (program.Instruction, error) {
	cond, err := parser.Parse(node.line.toks[1:])
	if err != nil {
		return nil, err
	}

	elseAt := -1
	for i, child := range node.children {
		if child.line.toks[0].Type != token.ELSE {
			continue
		}
		if len(child.line.toks) != 2 {
			return nil, fault.New(fault.Syntax, child.line.num, "unexpected tokens after else")
		}
		if elseAt >= 0 {
			return nil, fault.New(fault.Syntax, child.line.num, "second else in one if block")
		}
		elseAt = i
	}

	thenNodes := node.children
	var elseNodes []*rawNode
	if elseAt >= 0 {
		thenNodes = node.children[:elseAt]
		elseNodes = node.children[elseAt+1:]
	}

	c.pushScope()
	then, err := c.compileNodes(thenNodes)
	c.popScope()
	if err != nil {
		return nil, err
	}

	ins := &program.IfCondition{Line: node.line.num, Cond: cond, Then: then}
	if elseAt >= 0 {
		c.pushScope()
		els, err := c.compileNodes(elseNodes)
		c.popScope()
		if err != nil {
			return nil, err
		}
		ins.Else = els
	}
	return ins, nil
}

func (c *Compiler) compileFor(node *rawNode) (program.Instruction, error) {
	toks := node.line.toks
	line := node.line.num
	if toks[1].Type != token.LPAREN {
		return nil, fault.New(fault.Syntax, line, "expected ( after for")
	}
	close, err := matchParen(toks, 1, line)
	if err != nil {
		return nil, err
	}
	if toks[close+1].Type != token.EOL {
		return nil, fault.Errorf(fault.Syntax, line,
			"unexpected %q after for clauses", toks[close+1].Literal)
	}
	clauses := splitTop(toks[2:close], token.SEMICOLON)
	if len(clauses) != 3 {
		return nil, fault.Errorf(fault.Syntax, line,
			"for needs start; condition; step, got %d clauses", len(clauses))
	}

	// The loop owns one lexical scope: the start clause's variable is
	// visible to the condition, the step and the body.
	c.pushScope()
	defer c.popScope()

	start, err := c.compileClause(clauses[0], line, true)
	if err != nil {
		return nil, err
	}
	if len(clauses[1]) == 0 {
		return nil, fault.New(fault.Syntax, line, "for condition is empty")
	}
	cond, err := parser.Parse(clauses[1])
	if err != nil {
		return nil, err
	}
	step, err := c.compileClause(clauses[2], line, false)
	if err != nil {
		return nil, err
	}

	c.pushScope()
	body, err := c.compileNodes(node.children)
	c.popScope()
	if err != nil {
		return nil, err
	}

	return &program.ForLoop{Line: line, Start: start, Cond: cond, Step: step, Body: body}, nil
}

// compileClause compiles a for-header clause: an assignment or a
// declaration. The start clause may implicitly declare its variable
// regardless of the compile options.
func (c *Compiler) compileClause(toks []token.Token, line int, startClause bool) (program.Instruction, error) {
	if len(toks) == 0 {
		return nil, fault.New(fault.Syntax, line, "empty for clause")
	}
	withEOL := append(append([]token.Token{}, toks...), token.Token{Type: token.EOL, Line: line})
	clause := &rawNode{line: rawLine{num: line, toks: withEOL}}

	switch toks[0].Type {
	case token.VAR:
		if startClause && !c.opts.ImplicitDecl {
			c.opts.ImplicitDecl = true
			defer func() { c.opts.ImplicitDecl = false }()
		}
		return c.compileAssignment(clause)
	case token.DECL, token.SAFE, token.OVERWRITE, token.CONST, token.GLOBAL:
		return c.compileDeclaration(clause)
	}
	return nil, fault.New(fault.Syntax, line, "for clause must assign or declare")
}

func (c *Compiler) compileFunctionDef(node *rawNode) (program.Instruction, error) {
	toks := node.line.toks
	line := node.line.num
	fn := &program.Function{ReturnType: "auto"}

	i := 1
	if toks[i].Type == token.TYPE {
		fn.ReturnType = toks[i].Literal
		i++
	}
	if toks[i].Type != token.IDENT {
		return nil, fault.New(fault.Syntax, line, "expected function name")
	}
	fn.Name = toks[i].Literal
	i++
	if toks[i].Type != token.LPAREN {
		return nil, fault.Errorf(fault.Syntax, line, "expected ( after function name %s", fn.Name)
	}
	i++

	params := map[string]bool{}
	if toks[i].Type == token.RPAREN {
		i++
	} else {
		for {
			if toks[i].Type != token.VAR {
				return nil, fault.New(fault.Syntax, line, "expected $parameter name")
			}
			if params[toks[i].Literal] {
				return nil, fault.Errorf(fault.Syntax, line, "duplicate parameter $%s", toks[i].Literal)
			}
			params[toks[i].Literal] = true
			fn.Params = append(fn.Params, toks[i].Literal)
			i++
			if toks[i].Type == token.RPAREN {
				i++
				break
			}
			if toks[i].Type != token.COMMA {
				return nil, fault.New(fault.Syntax, line, "expected , between parameters")
			}
			i++
		}
	}
	if toks[i].Type == token.RECURSIVE {
		fn.Recursive = true
		i++
	}
	if toks[i].Type != token.EOL {
		return nil, fault.Errorf(fault.Syntax, line, "unexpected %q after function header", toks[i].Literal)
	}

	// Function bodies see their parameters and globals, nothing from
	// the enclosing lexical scope.
	saved := c.scopes
	c.scopes = []map[string]bool{params}
	body, err := c.compileNodes(node.children)
	c.scopes = saved
	if err != nil {
		return nil, err
	}
	fn.Body = body

	return &program.FunctionDef{Line: line, Fn: fn}, nil
}

// splitTop splits toks on sep occurring at bracket depth zero. A
// trailing EOL is dropped first.
func splitTop(toks []token.Token, sep token.TokenType) [][]token.Token {
	if n := len(toks); n > 0 && toks[n-1].Type == token.EOL {
		toks = toks[:n-1]
	}
	var out [][]token.Token
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Type {
		case token.LPAREN, token.LBRACKET:
			depth++
		case token.RPAREN, token.RBRACKET:
			depth--
		case sep:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(out, toks[start:])
}

func matchBracket(toks []token.Token, open int, line int) (int, error) {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Type {
		case token.LBRACKET:
			depth++
		case token.RBRACKET:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fault.New(fault.Syntax, line, "unterminated index")
}

func matchParen(toks []token.Token, open int, line int) (int, error) {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fault.New(fault.Syntax, line, "unterminated (")
}
