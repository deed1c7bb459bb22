// Command rjitc compiles script files into method images.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/do"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"rjit/pkg/config"
	"rjit/pkg/disasm"
	"rjit/pkg/driver"
	"rjit/pkg/method"
)

const appName = "rjitc"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "repl":
			return cmdRepl(args[1:], stdout, stderr)
		case "dis":
			return cmdDis(args[1:], stdout, stderr)
		case "help":
			usage(stdout)
			return 0
		}
	}
	return cmdCompile(args, stdout, stderr)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  %s [flags] -in <file>          Compile a source file to an image.
  %s repl [flags]                Compile snippets interactively.
  %s dis [-syntax s] <image>     Print the listing of an image file.

Run '%s -h' for compile flags.
`, appName, appName, appName, appName)
}

// commonFlags are shared by every subcommand that compiles.
type commonFlags struct {
	config  string
	verbose int
	syntax  string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "configuration file (default: search for "+config.FileName+")")
	fs.IntVar(&c.verbose, "v", -1, "log verbosity (overrides log.verbosity)")
	fs.StringVar(&c.syntax, "syntax", "intel", "listing syntax: gnu or intel")
}

// setup loads the configuration, configures logging and returns the
// service injector.
func (c *commonFlags) setup(searchDir string) (*do.Injector, disasm.Syntax, error) {
	syn, err := disasm.ParseSyntax(c.syntax)
	if err != nil {
		return nil, 0, err
	}
	cfg, err := loadConfig(c.config, searchDir)
	if err != nil {
		return nil, 0, err
	}
	verbosity := cfg.Log.Verbosity
	if c.verbose >= 0 {
		verbosity = c.verbose
	}
	commonlog.Configure(verbosity, nil)
	return newInjector(cfg), syn, nil
}

func loadConfig(path, searchDir string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.FindAndLoad(searchDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------
// compile
// -----------------------------------------------------------------------------

func cmdCompile(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	in := fs.String("in", "", "source file to compile")
	out := fs.String("out", "", "output file (default: the input with a .cbor extension, or stdout for listings)")
	listing := fs.Bool("S", false, "write an assembly listing instead of an image")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *in == "" && fs.NArg() == 1 {
		*in = fs.Arg(0)
	}
	if *in == "" || fs.NArg() > 1 {
		usage(stderr)
		return 2
	}

	src, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}

	i, syn, err := common.setup(filepath.Dir(*in))
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

	status := 0
	img, err := driver.Build(context.Background(), string(src), opts)
	if err != nil {
		fmt.Fprintln(stderr, "compile error:", err)
		if img == nil {
			return 1
		}
		status = 1
	}

	cfg := do.MustInvoke[*config.Config](i)
	if *listing || cfg.Output.Format == config.FormatListing {
		if err := writeListing(*out, img, syn, stdout); err != nil {
			fmt.Fprintln(stderr, "write error:", err)
			return 1
		}
		return status
	}

	path := *out
	if path == "" {
		path = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".cbor"
	}
	if err := method.WriteFile(path, img); err != nil {
		fmt.Fprintln(stderr, "write error:", err)
		return 1
	}
	return status
}

func writeListing(path string, img *method.Image, syn disasm.Syntax, stdout io.Writer) error {
	if path == "" {
		return disasm.Image(stdout, img, syn)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := disasm.Image(f, img, syn); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// -----------------------------------------------------------------------------
// dis
// -----------------------------------------------------------------------------

func cmdDis(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dis", flag.ContinueOnError)
	fs.SetOutput(stderr)
	syntaxName := fs.String("syntax", "intel", "listing syntax: gnu or intel")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "usage: %s dis [-syntax s] <image>\n", appName)
		return 2
	}
	syn, err := disasm.ParseSyntax(*syntaxName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	img, err := method.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}
	if err := disasm.Image(stdout, img, syn); err != nil {
		fmt.Fprintln(stderr, "disasm error:", err)
		return 1
	}
	return 0
}

func shutdown(i *do.Injector, stderr io.Writer) {
	if err := i.Shutdown(); err != nil {
		fmt.Fprintln(stderr, "shutdown error:", err)
	}
}
