package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/samber/do"

	"rjit/pkg/binder"
	"rjit/pkg/disasm"
	"rjit/pkg/driver"
	"rjit/pkg/parser"
	"rjit/pkg/syntax"
)

const (
	historyFile = ".rjitc_history"
	promptMain  = "rjit> "
	promptCont  = "....> "
)

// lineReader is the part of *liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func cmdRepl(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	i, syn, err := common.setup(wd)
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return 1
	}
	defer shutdown(i, stderr)

	opts, err := do.Invoke[driver.Options](i)
	if err != nil {
		fmt.Fprintln(stderr, "cache error:", err)
		return 1
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(stdout, "%s: type :help for commands\n", appName)
	newSession(opts, syn, stdout, stderr).loop(context.Background(), ln)
	return 0
}

// session compiles snippets one at a time. Snippets made only of
// declarations are kept and prepended to every later snippet, so their
// functions stay callable.
type session struct {
	opts   driver.Options
	syntax disasm.Syntax
	out    io.Writer
	errOut io.Writer

	prelude []string
}

func newSession(opts driver.Options, syn disasm.Syntax, out, errOut io.Writer) *session {
	return &session{opts: opts, syntax: syn, out: out, errOut: errOut}
}

func (s *session) loop(ctx context.Context, r lineReader) {
	for {
		code, ok := readSnippet(r)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if s.command(trimmed) {
				return
			}
			continue
		}

		if err := s.eval(ctx, code); err != nil {
			fmt.Fprintln(s.errOut, err)
			continue
		}
		r.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// command runs a colon command and reports whether the session should end.
func (s *session) command(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case ":quit":
		return true
	case ":reset":
		s.prelude = nil
		fmt.Fprintln(s.out, "declarations cleared")
	case ":syntax":
		if len(fields) != 2 {
			fmt.Fprintf(s.out, "syntax is %s\n", s.syntax)
			break
		}
		syn, err := disasm.ParseSyntax(fields[1])
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			break
		}
		s.syntax = syn
	case ":help":
		fmt.Fprint(s.out, `:syntax [gnu|intel]  show or set the listing syntax
:reset               forget earlier declarations
:quit                exit
`)
	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for commands.")
	}
	return false
}

// eval compiles code after the kept declarations and prints the listing of
// every method the snippet itself defines.
func (s *session) eval(ctx context.Context, code string) error {
	root, err := parser.ParseString(code)
	if err != nil {
		return err
	}

	src := strings.Join(append(s.prelude[:len(s.prelude):len(s.prelude)], code), "\n")
	img, buildErr := driver.Build(ctx, src, s.opts)
	if img == nil {
		return buildErr
	}

	names := disasm.ImageNames(img)
	for _, name := range definedMethods(root) {
		d, ok := img.Method(name)
		if !ok {
			continue
		}
		if err := disasm.Method(s.out, d, s.syntax, names); err != nil {
			return err
		}
	}
	if buildErr != nil {
		return buildErr
	}

	if len(definedMethods(root)) > 0 && !hasStatements(root) {
		s.prelude = append(s.prelude, code)
	}
	return nil
}

// definedMethods lists the methods root contributes to an image, with the
// top-level statements last.
func definedMethods(root *syntax.SourceCode) []string {
	var names []string
	for _, st := range root.Statements {
		switch st := st.(type) {
		case *syntax.MethodDeclaration:
			names = append(names, st.QualifiedName())
		case *syntax.ClassDeclaration:
			for _, m := range st.Members {
				if m, ok := m.(*syntax.MethodDeclaration); ok {
					names = append(names, m.QualifiedName())
				}
			}
		}
	}
	if hasStatements(root) {
		names = append(names, binder.MainName)
	}
	return names
}

func hasStatements(root *syntax.SourceCode) bool {
	for _, st := range root.Statements {
		switch st.(type) {
		case *syntax.MethodDeclaration, *syntax.ClassDeclaration:
		default:
			return true
		}
	}
	return false
}

// readSnippet reads lines until they parse or fail for a reason other
// than running out of input.
func readSnippet(r lineReader) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := r.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.ParseString(src); parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
