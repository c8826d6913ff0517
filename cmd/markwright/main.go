// Package main is the plugin management entry point for Markwright. The GUI
// shell links the same runtime; this binary drives it headless, mainly for
// scripting and plugin development:
//
//	markwright plugins list
//	markwright plugins enable <id>
//	markwright plugins disable <id>
//	markwright plugins actions
//	markwright plugins install <id-or-package>
//	markwright plugins uninstall <id-or-package>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/markwright/internal/app"
	"github.com/dshills/markwright/internal/installer"
	"github.com/dshills/markwright/internal/plugin"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var settingsPath string
	var logLevel string
	var showVersion bool

	flag.StringVar(&settingsPath, "settings", "", "Path to settings file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("markwright %s (%s)\n", version, commit)
		return 0
	}

	args := flag.Args()
	if len(args) < 2 || args[0] != "plugins" {
		usage()
		return 2
	}

	log := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(logLevel),
		Output: os.Stderr,
		Prefix: "markwright",
	})

	rt, err := app.NewRuntime(app.Options{
		SettingsPath: settingsPath,
		Logger:       log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer rt.Shutdown()

	if err := rt.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	rt.NotifyReady()

	switch cmd := args[1]; cmd {
	case "list":
		return cmdList(rt)
	case "enable", "disable":
		if len(args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: %s requires a plugin id\n", cmd)
			return 2
		}
		return cmdSetEnabled(rt, args[2], cmd == "enable")
	case "actions":
		return cmdActions(rt)
	case "install", "uninstall":
		if len(args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: %s requires a plugin id or package\n", cmd)
			return 2
		}
		return cmdInstall(rt, args[2], cmd == "install")
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		usage()
		return 2
	}
}

func cmdList(rt *app.Runtime) int {
	active := make(map[string]bool)
	for _, id := range rt.Manager.ActiveIDs() {
		active[id] = true
	}

	for _, info := range rt.Manager.ListPlugins() {
		state := "disabled"
		if active[info.PluginID] {
			state = "enabled"
		}
		fmt.Printf("%-40s %-10s %-8s %s\n", info.PluginID, info.Version, state, info.Name)
	}
	return 0
}

func cmdSetEnabled(rt *app.Runtime, id string, enabled bool) int {
	rt.State.SetEnabled(id, enabled)
	rt.Manager.Reload()
	if enabled {
		rt.Manager.OnAppReady()
	}
	return 0
}

func cmdActions(rt *app.Runtime) int {
	for _, a := range rt.Manager.EnabledActions(rt.Host()) {
		shortcut := a.Spec.Shortcut
		if shortcut == "" {
			shortcut = "-"
		}
		fmt.Printf("%-40s %-10s %-14s %s\n", a.Spec.ID, a.Spec.Menu, shortcut, a.Spec.Title)
	}
	return 0
}

func cmdInstall(rt *app.Runtime, name string, install bool) int {
	// Catalog ids map to package names; anything else is passed through to
	// the package manager as-is.
	pkg := name
	if item, ok := plugin.FindCatalogItem(rt.Manager.Catalog(), name); ok {
		pkg = item.Package
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var job *installer.Job
	var err error
	if install {
		job, err = rt.Installer.Install(ctx, pkg)
	} else {
		job, err = rt.Installer.Uninstall(ctx, pkg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for line := range job.Output() {
		fmt.Println(line)
	}
	<-job.Done()

	res := job.Result()
	if !res.OK {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", res.Err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: exited with code %d\n", res.ExitCode)
		}
		return 1
	}

	rt.Manager.Reload()
	rt.Manager.OnAppReady()
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: markwright [flags] plugins <command>

Commands:
  list                      List discovered plugins
  enable <id>               Enable a plugin
  disable <id>              Disable a plugin
  actions                   List actions contributed by enabled plugins
  install <id|package>      Install a plugin package
  uninstall <id|package>    Remove a plugin package

Flags:
`)
	flag.PrintDefaults()
}
