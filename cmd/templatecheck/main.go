// Command templatecheck runs the type-resolution pass over JSON-serialized
// template file ASTs produced by the upstream parser, resolving proto types
// from a binary FileDescriptorSet and visual elements from a velog YAML
// config, and reports diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/sgammon/closure-templates-sub000/internal/diagnostics"
	"github.com/sgammon/closure-templates-sub000/internal/frontend/astjson"
	"github.com/sgammon/closure-templates-sub000/internal/logging"
	"github.com/sgammon/closure-templates-sub000/internal/semantics/typechecker"
	"github.com/sgammon/closure-templates-sub000/internal/types/registry"
)

type cli struct {
	DescriptorSet string   `help:"Binary FileDescriptorSet with the proto schema." type:"existingfile" placeholder:"schema.pb"`
	LoggingConfig string   `help:"velog YAML configuration." type:"existingfile" placeholder:"velog.yaml"`
	Verbose       bool     `short:"v" help:"Enable debug logging."`
	Files         []string `arg:"" name:"file" help:"JSON-serialized template file ASTs." type:"existingfile"`
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("templatecheck"),
		kong.Description("Type resolution and narrowing for template files."))

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if args.Verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	if err := run(args, logger); err != nil {
		kctx.FatalIfErrorf(err)
	}
}

func run(args cli, logger log.Logger) error {
	reg := registry.New()
	if args.DescriptorSet != "" {
		data, err := os.ReadFile(args.DescriptorSet)
		if err != nil {
			return errors.Wrap(err, "reading descriptor set")
		}
		var fds descriptorpb.FileDescriptorSet
		if err := proto.Unmarshal(data, &fds); err != nil {
			return errors.Wrap(err, "parsing descriptor set")
		}
		if err := reg.LoadDescriptorSet(&fds); err != nil {
			return err
		}
		level.Debug(logger).Log("msg", "loaded proto schema", "files", len(fds.GetFile()))
	}

	logcfg := logging.Empty()
	if args.LoggingConfig != "" {
		cfg, err := logging.LoadFile(args.LoggingConfig)
		if err != nil {
			return err
		}
		logcfg = cfg
	}

	bag := diagnostics.NewBag()
	checker := typechecker.NewChecker(reg, logcfg, bag, typechecker.WithLogger(logger))

	for _, path := range args.Files {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "opening template dump")
		}
		file, err := astjson.DecodeFile(f, reg)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "decoding %s", path)
		}
		level.Debug(logger).Log("msg", "checking file", "path", file.Path)
		checker.CheckFile(file)
	}

	emitter := diagnostics.NewEmitter(os.Stderr, bag.SourceCache())
	for _, diag := range bag.Diagnostics() {
		emitter.Emit(diag)
	}

	if bag.HasErrors() {
		fmt.Fprintf(os.Stderr, "found %d error(s) and %d warning(s)\n", bag.ErrorCount(), bag.WarningCount())
		os.Exit(1)
	}
	if n := bag.WarningCount(); n > 0 {
		fmt.Fprintf(os.Stderr, "found %d warning(s)\n", n)
	}
	return nil
}
