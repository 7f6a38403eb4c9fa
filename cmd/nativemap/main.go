package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/decoder"
	"github.com/wippyai/nativemap/errors"
	"github.com/wippyai/nativemap/layout"
	"github.com/wippyai/nativemap/memory"
	"github.com/wippyai/nativemap/schema"
	"github.com/wippyai/nativemap/schemafile"
)

type config struct {
	wasmFile    string
	dataFile    string
	schemaFile  string
	typeName    string
	funcName    string
	args        string
	encoding    string
	format      string
	addr        uint64
	base        uint64
	maxDepth    int
	list        bool
	interactive bool
	verbose     bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.schemaFile, "schema", "", "Path to YAML schema document")
	flag.StringVar(&cfg.typeName, "type", "", "Root struct to decode")
	flag.StringVar(&cfg.wasmFile, "wasm", "", "Path to core wasm module whose memory is decoded")
	flag.StringVar(&cfg.funcName, "func", "", "Exported function returning the struct address")
	flag.StringVar(&cfg.args, "args", "", "Integer arguments for -func (comma-separated)")
	flag.StringVar(&cfg.dataFile, "data", "", "Raw memory image to decode instead of a wasm module")
	flag.Uint64Var(&cfg.base, "base", 0, "Address of the first byte of -data")
	flag.Uint64Var(&cfg.addr, "addr", 0, "Struct address when -func is not given")
	flag.StringVar(&cfg.encoding, "encoding", decoder.DefaultEncoding, "Default text encoding")
	flag.StringVar(&cfg.format, "format", "tree", "Output format: tree, spew, layout or yaml")
	flag.IntVar(&cfg.maxDepth, "depth", decoder.DefaultMaxDepth, "Maximum pointer depth")
	flag.BoolVar(&cfg.list, "list", false, "List declared structs and exit")
	flag.BoolVar(&cfg.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&cfg.verbose, "v", false, "Log decoder substitutions")
	flag.Parse()

	if cfg.schemaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: nativemap -schema <file.yaml> -list")
		fmt.Fprintln(os.Stderr, "       nativemap -schema <file.yaml> -type T -format layout")
		fmt.Fprintln(os.Stderr, "       nativemap -schema <file.yaml> -type T -wasm <file.wasm> -func name [-args 1,2]")
		fmt.Fprintln(os.Stderr, "       nativemap -schema <file.yaml> -type T -data <image.bin> -base 0x1000 -addr 0x1040")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	ctx := context.Background()

	log := zap.NewNop()
	if cfg.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		log = l
	}
	defer func() { _ = log.Sync() }()
	decoder.SetLogger(log)

	data, err := os.ReadFile(cfg.schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	reg, err := schemafile.Load(data)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	if cfg.list {
		for _, name := range reg.Names() {
			s, _ := reg.Lookup(name)
			fmt.Printf("%s (size %d, align %d)\n", name, layout.Size(s), layout.Align(s))
		}
		return nil
	}

	if cfg.typeName == "" {
		return fmt.Errorf("-type is required")
	}
	root, ok := reg.Lookup(cfg.typeName)
	if !ok {
		return errors.NotFound(errors.PhaseLoad, "struct", cfg.typeName)
	}

	switch cfg.format {
	case "layout":
		fmt.Print(renderLayout(root))
		return nil
	case "yaml":
		out, err := schemafile.Marshal(schemafile.FromSchemas(root))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	mem, addr, cleanup, err := openSource(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer cleanup()

	d := decoder.New(decoder.Options{
		Logger:   log,
		Encoding: cfg.encoding,
		MaxDepth: cfg.maxDepth,
	})
	rec, err := d.Decode(root, mem, addr)
	if err != nil {
		return fmt.Errorf("decode %s at %s: %w", root.Name(), addr, err)
	}

	if cfg.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(root.Name(), addr, rec)
	}

	switch cfg.format {
	case "tree":
		fmt.Println(renderTree(root.Name(), addr, rec))
	case "spew":
		spew.Fdump(os.Stdout, rec.Map())
	default:
		return fmt.Errorf("unknown format %q", cfg.format)
	}
	return nil
}

// openSource returns the memory to decode and the root address, either
// from a wasm module export or from a raw image.
func openSource(ctx context.Context, cfg config, reg *schema.Registry) (nativemap.Memory, nativemap.Address, func(), error) {
	noop := func() {}

	if cfg.wasmFile == "" {
		if cfg.dataFile == "" {
			return nil, 0, noop, fmt.Errorf("one of -wasm or -data is required")
		}
		img, err := os.ReadFile(cfg.dataFile)
		if err != nil {
			return nil, 0, noop, fmt.Errorf("read image: %w", err)
		}
		return memory.FromBytes(nativemap.Address(cfg.base), img), nativemap.Address(cfg.addr), noop, nil
	}

	if reg.Platform() != nativemap.Wasm32 {
		return nil, 0, noop, fmt.Errorf("schema platform must be wasm32 to decode wasm memory")
	}

	bin, err := os.ReadFile(cfg.wasmFile)
	if err != nil {
		return nil, 0, noop, fmt.Errorf("read module: %w", err)
	}

	r := wazero.NewRuntime(ctx)
	cleanup := func() { _ = r.Close(ctx) }
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	mod, err := r.InstantiateWithConfig(ctx, bin, wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		cleanup()
		return nil, 0, noop, fmt.Errorf("instantiate: %w", err)
	}
	wmem := mod.ExportedMemory("memory")
	if wmem == nil {
		cleanup()
		return nil, 0, noop, fmt.Errorf("module exports no memory")
	}

	addr := nativemap.Address(cfg.addr)
	if cfg.funcName != "" {
		fn := mod.ExportedFunction(cfg.funcName)
		if fn == nil {
			cleanup()
			return nil, 0, noop, fmt.Errorf("function %q is not exported", cfg.funcName)
		}
		params, err := parseArgs(cfg.args)
		if err != nil {
			cleanup()
			return nil, 0, noop, err
		}
		results, err := fn.Call(ctx, params...)
		if err != nil {
			cleanup()
			return nil, 0, noop, fmt.Errorf("call %s: %w", cfg.funcName, err)
		}
		if len(results) != 1 {
			cleanup()
			return nil, 0, noop, fmt.Errorf("%s returned %d values, want one pointer", cfg.funcName, len(results))
		}
		addr = nativemap.Address(uint32(results[0]))
	}

	return memory.NewWazero(wmem), addr, cleanup, nil
}

func parseArgs(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint64, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if v, err := strconv.ParseUint(p, 0, 64); err == nil {
			out[i] = v
			continue
		}
		v, err := strconv.ParseInt(p, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", p, err)
		}
		out[i] = uint64(v)
	}
	return out, nil
}
