// meshbuild turns imported glTF meshes into render-ready buffers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshbuild/internal/config"
	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/gltfio"
	"github.com/Faultbox/meshbuild/internal/logger"
	"github.com/Faultbox/meshbuild/internal/pipeline"
	"github.com/Faultbox/meshbuild/internal/skeletal"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "build", "b":
		err = cmdBuild(args)
	case "chunk", "skin":
		err = cmdChunk(args)
	case "info":
		err = cmdInfo(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshbuild - static and skeletal mesh build pipeline

Usage:
  meshbuild <command> [options]

Commands:
  build <in.gltf> [out.glb]   Build every static mesh
  chunk <in.gltf> [out.glb]   Build every skinned mesh into bone chunks
  info <in.gltf>              Show the meshes of a file
  config [path]               Write the effective configuration

Run "meshbuild <command> -h" for the options of a command.

Examples:
  meshbuild build -mikk -scale 100 rock.glb
  meshbuild chunk -max-bones 48 hero.gltf hero_built.glb
  meshbuild config -wireframe ./meshbuild.yaml`)
}

// setup parses the shared flags and starts logging.
func setup(name string, args []string, usage string) (*config.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: meshbuild %s [options] %s\n", name, usage)
		fs.PrintDefaults()
	}
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, fs.Args(), nil
}

func cmdBuild(args []string) error {
	cfg, rest, err := setup("build", args, "<in.gltf> [out.glb]")
	if err != nil {
		return err
	}
	defer logger.Sync()
	if len(rest) < 1 {
		return fmt.Errorf("usage: meshbuild build [options] <in.gltf> [out.glb]")
	}

	meshes, err := gltfio.Open(rest[0])
	if err != nil {
		return err
	}

	opts := pipeline.OptionsFromConfig(cfg)
	jobs := make([]pipeline.Job, 0, len(meshes))
	for _, m := range meshes {
		if m.Skin != nil {
			logger.Info("skipping skinned mesh, use chunk", logger.Mesh(m.Name))
			continue
		}
		jobs = append(jobs, pipeline.Job{Name: m.Name, Desc: m.Desc, Options: opts})
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%s has no static meshes", rest[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var diags diag.List
	progress, done := startProgress()
	lods, err := pipeline.BuildAll(ctx, jobs, cfg.Pipeline.Workers, &diags, progress)
	done()
	printDiagnostics(&diags)
	if err != nil {
		return err
	}

	doc := gltfio.NewDocument()
	for i, lod := range lods {
		printLOD(jobs[i].Name, lod, cfg.Build.HighPrecisionTangents)
		gltfio.AddStatic(doc, jobs[i].Name, lod)
	}
	out := outputPath(rest)
	if err := gltfio.SaveBinary(doc, out); err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", out)
	return nil
}

func cmdChunk(args []string) error {
	cfg, rest, err := setup("chunk", args, "<in.gltf> [out.glb]")
	if err != nil {
		return err
	}
	defer logger.Sync()
	if len(rest) < 1 {
		return fmt.Errorf("usage: meshbuild chunk [options] <in.gltf> [out.glb]")
	}

	meshes, err := gltfio.Open(rest[0])
	if err != nil {
		return err
	}

	opts := pipeline.SkeletalOptionsFromConfig(cfg)
	doc := gltfio.NewDocument()
	var diags diag.List
	built := 0
	for _, m := range meshes {
		if m.Skin == nil {
			continue
		}
		progress, done := startProgress()
		model, err := skeletal.Build(m.Skin, opts, &diags, progress)
		done()
		if err != nil {
			printDiagnostics(&diags)
			return fmt.Errorf("%s: %w", m.Name, err)
		}
		printModel(m.Name, model, m.Skin.NumUVs)
		gltfio.AddSkinned(doc, m.Name, model, m.Skin.NumUVs)
		built++
	}
	printDiagnostics(&diags)
	if built == 0 {
		return fmt.Errorf("%s has no skinned meshes", rest[0])
	}

	out := outputPath(rest)
	if err := gltfio.SaveBinary(doc, out); err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", out)
	return nil
}

func cmdInfo(args []string) error {
	_, rest, err := setup("info", args, "<in.gltf>")
	if err != nil {
		return err
	}
	defer logger.Sync()
	if len(rest) < 1 {
		return fmt.Errorf("usage: meshbuild info <in.gltf>")
	}

	meshes, err := gltfio.Open(rest[0])
	if err != nil {
		return err
	}
	fmt.Printf("File:   %s\n", rest[0])
	fmt.Printf("Meshes: %d\n\n", len(meshes))
	for _, m := range meshes {
		printMesh(m)
	}
	return nil
}

func cmdConfig(args []string) error {
	cfg, rest, err := setup("config", args, "[path]")
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(rest) == 0 {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote: %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	if err := cfg.SaveTo(rest[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", rest[0])
	return nil
}

// outputPath returns the explicit output or <input>_built.glb.
func outputPath(rest []string) string {
	if len(rest) > 1 {
		return rest[1]
	}
	in := rest[0]
	return strings.TrimSuffix(in, filepath.Ext(in)) + "_built.glb"
}

// startProgress logs stage updates at debug level until done is called.
func startProgress() (diag.Reporter, func()) {
	ch := make(chan diag.Progress, 64)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for p := range ch {
			logger.Sugar.Debugf("%s %d/%d", p.Stage, p.Current, p.Total)
		}
	}()
	return diag.NewChannelReporter(ch), func() {
		close(ch)
		<-finished
	}
}
