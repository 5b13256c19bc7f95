package pgts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/lucasefe/pgts/generator"
	"github.com/lucasefe/pgts/render"
	"github.com/lucasefe/pgts/schema"
)

// Progress receives run progress. Every callback is optional.
type Progress struct {
	// OnStart receives the number of schema objects about to be processed.
	OnStart func(total int)
	// OnProgress is called once per processed schema object.
	OnProgress func()
	// OnEnd is called when generation is complete.
	OnEnd func()
}

func (p *Progress) start(total int) {
	if p != nil && p.OnStart != nil {
		p.OnStart(total)
	}
}

func (p *Progress) step() {
	if p != nil && p.OnProgress != nil {
		p.OnProgress()
	}
}

func (p *Progress) end() {
	if p != nil && p.OnEnd != nil {
		p.OnEnd()
	}
}

// File is one rendered output file.
type File struct {
	// Key is the output-file key, e.g. "public/Film".
	Key string
	// Path is where the file is written.
	Path  string
	Lines []string
}

// Result summarizes a run.
type Result struct {
	Files    []File
	Warnings []string
}

// Run introspects the database, generates declarations and writes them
// under cfg.OutputPath. Nothing is deleted or written unless introspection
// and rendering both succeed.
func Run(ctx context.Context, cfg Config, progress *Progress) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	catalog, err := cfg.introspector().Introspect(ctx)
	if err != nil {
		return nil, err
	}

	ic := cfg.instantiate(catalog)
	res, err := generate(ctx, ic, progress)
	if err != nil {
		return nil, err
	}

	if ic.PreDeleteOutputFolder {
		if err := clearFolder(ic.OutputPath); err != nil {
			return nil, fmt.Errorf("clear output folder: %w", err)
		}
	}

	if err := writeAll(ctx, ic.Writer, res.Files, ic.Workers); err != nil {
		return nil, err
	}
	return res, nil
}

// Generate renders catalog without touching the database or the
// filesystem. cfg.Connection is not required.
func Generate(ctx context.Context, cfg Config, catalog schema.Catalog) (*Result, error) {
	if err := cfg.validateOptions(); err != nil {
		return nil, err
	}
	return generate(ctx, cfg.instantiate(catalog), nil)
}

func generate(ctx context.Context, ic *InstantiatedConfig, progress *Progress) (*Result, error) {
	gctx := generator.NewContext(ic.Catalog, generator.Options{
		TypeMap:      ic.TypeMap,
		Resolver:     ic.Resolver,
		Sort:         ic.PropertySort,
		ResolveViews: ic.ResolveViews,
		Warn:         func(msg string) { ic.Logger.Printf("warning: %s", msg) },
		OnObject:     func(*schema.Object) { progress.step() },
	})

	progress.start(ic.Catalog.Len())
	out, err := generator.Generate(gctx)
	progress.end()
	if err != nil {
		return nil, err
	}

	hooks := append(append([]PreRenderHook(nil), ic.PreRenderHooks...), CheckReferences)
	for _, hook := range hooks {
		next, err := hook(out, ic)
		if err != nil {
			return nil, fmt.Errorf("pre-render hook: %w", err)
		}
		if next == nil {
			return nil, errors.New("pre-render hook: returned no output")
		}
		out = next
	}

	files, err := renderAll(ctx, out, ic)
	if err != nil {
		return nil, err
	}
	return &Result{Files: files, Warnings: gctx.Warnings()}, nil
}

// renderAll renders each file and runs the post-render hooks on it. Files
// are independent at this point, so they are processed in parallel; the
// result keeps the output's key order.
func renderAll(ctx context.Context, out *generator.Output, ic *InstantiatedConfig) ([]File, error) {
	post := append([]PostRenderHook{MarkAsGenerated}, ic.PostRenderHooks...)
	keys := out.Keys()
	files := make([]File, len(keys))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(ic.Workers)

	for i, key := range keys {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(ic.OutputPath, filepath.FromSlash(key)+".ts")
			lines := render.TypeScript(out.Declarations(key), key)
			for _, hook := range post {
				var err error
				if lines, err = hook(path, lines, ic); err != nil {
					return fmt.Errorf("post-render hook for %s: %w", path, err)
				}
			}
			files[i] = File{Key: key, Path: path, Lines: lines}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
