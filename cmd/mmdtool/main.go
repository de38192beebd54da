// mmdtool is a CLI utility for inspecting MMD models and motions.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/mmd-core/internal/config"
	"github.com/Faultbox/mmd-core/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Source != "" {
		logger.Named("config").Debug("config loaded", zap.String("path", cfg.Source))
	}

	a := &app{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr}
	code := a.run(flag.Args())
	logger.Sync()
	os.Exit(code)
}

// app carries the settings and output streams shared by all commands.
type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

// usageError reports bad command arguments.
type usageError string

func (e usageError) Error() string { return "Usage: mmdtool " + string(e) }

// errFailed is returned by batch commands after reporting each failure.
var errFailed = errors.New("one or more files failed")

// run dispatches a command and returns the process exit code.
func (a *app) run(args []string) int {
	if len(args) < 1 {
		a.printUsage()
		return 1
	}

	command := args[0]
	args = args[1:]

	var err error
	switch command {
	case "info":
		err = a.cmdInfo(args)
	case "meshes":
		err = a.cmdMeshes(args)
	case "bones":
		err = a.cmdBones(args)
	case "textures", "tex":
		err = a.cmdTextures(args)
	case "sample":
		err = a.cmdSample(args)
	case "pose":
		err = a.cmdPose(args)
	case "dump":
		err = a.cmdDump(args)
	case "check":
		err = a.cmdCheck(args)
	case "list", "ls":
		err = a.cmdList(args)
	case "help", "-h", "--help":
		a.printUsage()
		return 0
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", command)
		a.printUsage()
		return 1
	}

	if err == nil {
		return 0
	}

	var usage usageError
	if errors.As(err, &usage) {
		fmt.Fprintln(a.stderr, usage.Error())
		return 1
	}
	logger.Named("mmdtool").Debug("command failed", zap.String("command", command), zap.Error(err))
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return 1
}

func (a *app) printUsage() {
	fmt.Fprintln(a.stdout, `mmdtool - MMD model and motion utility

Usage:
  mmdtool [global options] <command> [options]

Global options:
  -config <file>   Config file (default ./mmdtool.yaml)
  -debug           Debug logging
  -data <dirs>     Extra texture search directories
  -fps <rate>      Motion frame rate
  -log <file>      Also log to a rotating file

Commands:
  info <file>                       Summarize a model or motion
  meshes <model>                    List meshes per material
  bones <model>                     List bones, IK solvers marked
  textures <model>                  Show where each texture resolves
  sample [options] <motion> <clip>  Evaluate one clip over time
  pose [options] <model> <motion>   Bone world positions at a frame
  dump [-depth N] <file>            Dump the decoded structure
  check <file|dir>...               Decode every file, report failures
  list <archive.zip> [pattern]      List model and motion entries

Files inside zip archives are addressed as archive.zip:path/in/zip.

Examples:
  mmdtool info miku.pmx
  mmdtool sample -from 0 -to 60 -step 5 dance.vmd センター
  mmdtool pose -frame 30 miku.pmx dance.vmd
  mmdtool -data ./toon textures models.zip:ミク/ミク.pmx
  mmdtool check ./models`)
}
