// Package driver runs the whole pipeline from source text to a method
// image: parse, bind, lay out the heap, and compile every method.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"rjit/pkg/binder"
	"rjit/pkg/codecache"
	"rjit/pkg/codegen"
	"rjit/pkg/heap"
	"rjit/pkg/method"
	"rjit/pkg/parser"
	"rjit/pkg/syntax"
)

var log = commonlog.GetLogger("rjit.driver")

// DefaultBuiltins are the runtime globals available without a declaration.
var DefaultBuiltins = []string{"log", "Object"}

// Options configures a build. The zero value compiles against the default
// heap base with computed frames and no cache.
type Options struct {
	HeapBase     heap.Address
	FrameReserve int

	// Cache, if set, is consulted before compiling each method and filled
	// afterwards.
	Cache *codecache.Cache

	// Concurrency bounds parallel compilations; 0 means GOMAXPROCS.
	Concurrency int

	// Builtins replaces DefaultBuiltins when non-nil.
	Builtins []string
}

// Build compiles src into an image.
//
// Parse and bind errors are fatal and return a nil image. Failures of
// individual methods are not: the image holds every method that compiled
// and the returned error joins the rest, each prefixed with its method name.
func Build(ctx context.Context, src string, opts Options) (*method.Image, error) {
	root, err := parser.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	builtins := opts.Builtins
	if builtins == nil {
		builtins = DefaultBuiltins
	}
	prog, err := binder.Bind(root, builtins...)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	base := opts.HeapBase
	if base == 0 {
		base = heap.DefaultBase
	}
	h := heap.New(base)
	for _, sym := range prog.Globals.Symbols() {
		h.DefineFunction(sym.Name())
	}
	img := method.NewImage(h.Layout(), h.Functions())

	methods := prog.All()
	results := make([]*method.Descriptor, len(methods))
	errs := make([]error, len(methods))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	c := &compiler{src: src, heap: h, layout: img.Heap, bindings: bindings(h), opts: opts}
	for i, m := range methods {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := c.compile(gctx, m)
			if err != nil {
				errs[i] = fmt.Errorf("method %s: %w", m.QualifiedName(), err)
				return nil
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, ctor := range prog.Constructors {
		errs = append(errs, fmt.Errorf("constructor %s: %w", ctor.Class, codegen.Unsupported(ctor)))
	}
	for _, d := range results {
		if d != nil {
			img.Methods = append(img.Methods, d)
		}
	}
	img.Sort()

	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	log.Infof("image %s: %d methods compiled, %d failed", img.ID, len(img.Methods), failed)
	return img, errors.Join(errs...)
}

// compiler compiles one method at a time; each call owns its generator.
type compiler struct {
	src      string
	heap     *heap.Heap
	layout   heap.Layout
	bindings string
	opts     Options
}

// key covers everything baked into the code: function addresses are
// immediates, so the bindings take part along with the layout.
func (c *compiler) key(m *syntax.MethodDeclaration) string {
	return codecache.Key(c.src, m.QualifiedName(), fmt.Sprintf("%+v", c.layout), c.bindings, strconv.Itoa(c.opts.FrameReserve))
}

// bindings renders the function objects of h in address order.
func bindings(h *heap.Heap) string {
	fns := h.Functions()
	var sb strings.Builder
	for _, name := range h.Names() {
		fmt.Fprintf(&sb, "%s=%#x;", name, uint64(fns[name]))
	}
	return sb.String()
}

func (c *compiler) compile(ctx context.Context, m *syntax.MethodDeclaration) (*method.Descriptor, error) {
	cacheable := c.opts.Cache != nil && !m.HasModifier(syntax.ModDeclare)

	var key string
	if cacheable {
		key = c.key(m)
		d, err := c.opts.Cache.Get(ctx, key)
		switch {
		case err == nil:
			log.Debugf("%s: cache hit", m.QualifiedName())
			return d, nil
		case !errors.Is(err, codecache.ErrNotFound):
			log.Warningf("%s: cache read: %s", m.QualifiedName(), err)
		}
	}

	d, err := codegen.New(c.heap, codegen.Options{FrameReserve: c.opts.FrameReserve}).Compile(m)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := c.opts.Cache.Put(ctx, key, d); err != nil {
			log.Warningf("%s: cache write: %s", m.QualifiedName(), err)
		}
	}
	return d, nil
}
