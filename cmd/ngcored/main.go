/*
MIT License

Copyright (c) 2025 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Command ngcored is the process-lifecycle core's entrypoint: one binary
// playing three roles depending on how it was started — the master
// (plain invocation), or a re-exec'd worker/cache-manager/cache-loader
// (NGCORE_ENTRYPOINT set by core/process.Spawn). The CLI surface mirrors
// spec.md §6 exactly; everything past flag parsing hands off to
// core/config, core/master, core/worker, core/cachehelper and
// core/upgrade.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"github.com/nabbar/ngcore/core/cachehelper"
	"github.com/nabbar/ngcore/core/channel"
	"github.com/nabbar/ngcore/core/config"
	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/core/master"
	"github.com/nabbar/ngcore/core/module"
	"github.com/nabbar/ngcore/core/process"
	coresig "github.com/nabbar/ngcore/core/signal"
	"github.com/nabbar/ngcore/core/upgrade"
	"github.com/nabbar/ngcore/core/worker"
	"github.com/nabbar/ngcore/internal/demo"
	"github.com/nabbar/ngcore/logger"
)

// buildVersion/buildCommit are overwritten by -ldflags at release build
// time; left blank here, "-v"/"-V" fall back to "(devel)".
var (
	buildVersion = ""
	buildCommit  = ""
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cliFlags struct {
	version       bool
	versionConfig bool
	help2         bool
	test          bool
	testPrint     bool
	quiet         bool
	signal        string
	prefix        string
	errLog        string
	config        string
	global        []string
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{}

	cmd := &cobra.Command{
		Use:           "ngcored",
		Short:         "network server process-lifecycle core",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&f.version, "version", "v", false, "print version and exit")
	flags.BoolVarP(&f.versionConfig, "version-config", "V", false, "print version and build configuration, then exit")
	flags.BoolVarP(&f.help2, "question-mark", "?", false, "show this help")
	flags.BoolVarP(&f.test, "test", "t", false, "test the configuration file and exit")
	flags.BoolVarP(&f.testPrint, "test-print", "T", false, "test the configuration file, print it, and exit")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "suppress non-error output during -t/-T")
	flags.StringVarP(&f.signal, "signal", "s", "", "send a signal to the running master: stop|quit|reopen|reload")
	flags.StringVarP(&f.prefix, "prefix", "p", "", "prefix for relative paths (a path separator is appended if missing)")
	flags.StringVarP(&f.errLog, "errlog", "e", "", `error log path, or "stderr"`)
	flags.StringVarP(&f.config, "config", "c", "ngcore.yaml", "configuration file path, relative to prefix")
	flags.StringArrayVarP(&f.global, "global", "g", nil, "extra top-level directive (repeatable)")
	_ = flags.MarkHidden("question-mark")

	return cmd
}

func run(cmd *cobra.Command, f *cliFlags) error {
	if f.help2 {
		return cmd.Help()
	}
	if f.version {
		fmt.Println(versionString())
		return nil
	}
	if f.versionConfig {
		fmt.Println(versionVerboseString())
		return nil
	}

	prefix := resolvePrefix(f.prefix)
	configPath := resolveConfigPath(prefix, f.config)

	conf, v, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("ngcored: %w", err)
	}
	if err := config.BindFlags(cmd, v); err != nil {
		return fmt.Errorf("ngcored: bind flags: %w", err)
	}
	if err := v.Unmarshal(conf); err != nil {
		return fmt.Errorf("ngcored: apply flag overrides: %w", err)
	}
	applyGlobalDirectives(conf, f.global)

	if f.signal != "" {
		return sendSignal(conf.PidFile, f.signal)
	}

	if f.test || f.testPrint {
		if f.testPrint {
			b, err := toml.Marshal(*conf)
			if err != nil {
				return fmt.Errorf("ngcored: render configuration: %w", err)
			}
			os.Stdout.Write(b)
		}
		if !f.quiet {
			fmt.Printf("configuration file %s test is successful\n", configPath)
		}
		return nil
	}

	log := buildLogger(conf, f.errLog)

	if entry, ok := process.ResolveEntrypoint(); ok {
		runChild(entry, conf, log)
		return nil
	}

	return runMaster(conf, configPath, log)
}

// resolvePrefix normalizes -p into a directory guaranteed to end in a path
// separator, falling back to the working directory (and, failing that, the
// user's home directory, the same order-of-fallback nabbar-golib/cobra's
// getDefaultPath uses) when unset.
func resolvePrefix(p string) string {
	if p == "" {
		if wd, err := os.Getwd(); err == nil {
			p = wd
		} else if home, herr := homedir.Dir(); herr == nil {
			p = home
		} else {
			p = "."
		}
	}
	if !strings.HasSuffix(p, string(os.PathSeparator)) {
		p += string(os.PathSeparator)
	}
	return p
}

func resolveConfigPath(prefix, c string) string {
	if filepath.IsAbs(c) {
		return c
	}
	return filepath.Clean(prefix + c)
}

// applyGlobalDirectives applies "-g" overrides of the form "key=value"
// against the fields spec.md §6 documents as settable this way; unknown
// keys are ignored, matching the source's tolerance for directives handled
// elsewhere in the block.
func applyGlobalDirectives(conf *config.Core, directives []string) {
	for _, d := range directives {
		k, v, ok := strings.Cut(d, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "pid":
			conf.PidFile = strings.TrimSpace(v)
		case "worker_processes":
			conf.WorkerCount = strings.TrimSpace(v)
		}
	}
}

func buildLogger(conf *config.Core, errLog string) logger.Logger {
	log := logger.New(logger.InfoLevel)
	if errLog != "" && errLog != "stderr" {
		if err := log.AddFile(errLog, true); err != nil {
			log.Warn("open error log ", errLog, ": ", err)
		}
	}
	return log
}

// sendSignal implements "-s {stop|quit|reopen|reload}": read the running
// master's pid from its PID file and deliver the matching POSIX signal
// directly, exactly as an operator's `kill` would (spec.md §6). Exit code
// 1 covers both "not running" and "no such signal name", per spec.md's
// "failed signal send" exit-1 category.
func sendSignal(pidPath, name string) error {
	sig, err := signalForName(name)
	if err != nil {
		return err
	}

	pid, err := config.ReadPidFile(pidPath)
	if err != nil {
		return fmt.Errorf("ngcored: %w", err)
	}

	dead, err := channel.Kill(pid, sig)
	if err != nil {
		return fmt.Errorf("ngcored: signal pid %d: %w", pid, err)
	}
	if dead {
		return fmt.Errorf("ngcored: master (pid %d) is not running", pid)
	}
	return nil
}

func signalForName(name string) (syscall.Signal, error) {
	switch name {
	case "stop":
		return coresig.SigTerminate, nil
	case "quit":
		return coresig.SigShutdown, nil
	case "reopen":
		return coresig.SigReopen, nil
	case "reload":
		return coresig.SigReconfigure, nil
	default:
		return 0, fmt.Errorf("ngcored: unknown -s signal %q", name)
	}
}

// registerDemoModules wires the two built-in modules cmd/ngcored ships so
// the lifecycle hooks have something to run; see internal/demo.
func registerDemoModules() *module.Registry {
	r := module.NewRegistry()
	_ = r.Register(demo.NewEcho())
	_ = r.Register(demo.NewStats())
	return r
}

// runMaster builds the first cycle, wires a Master around it, writes the
// PID file, spawns the initial worker/cache-helper set, and blocks in the
// supervisor loop. It only returns on a startup-time error; once Run
// starts, the process exits from inside master.exit instead.
func runMaster(conf *config.Core, configPath string, log logger.Logger) error {
	mods := registerDemoModules()

	initial, err := newCycleBuilder(conf, log)(nil)
	if err != nil {
		return fmt.Errorf("ngcored: build initial cycle: %w", err)
	}
	if err := mods.InitMaster(initial); err != nil {
		initial.Destroy()
		return fmt.Errorf("ngcored: module init_master: %w", err)
	}

	m := master.New(log, conf, mods, initial)
	m.ConfigPath = configPath
	m.UpgradeFn = upgrade.Run
	m.InitCycleFn = newCycleBuilder(conf, log)

	if conf.PidFile != "" {
		if err := config.WritePidFile(conf.PidFile, os.Getpid()); err != nil {
			return fmt.Errorf("ngcored: %w", err)
		}
	}

	m.Start()
	m.Run()
	return nil
}

// runChild dispatches a re-exec'd process to its role. Each branch ends by
// calling into the package that owns that role's event loop, none of which
// return: worker.Run and the cachehelper entrypoints terminate the process
// themselves (spec.md §4.5, §4.9).
func runChild(entry process.Entrypoint, conf *config.Core, log logger.Logger) {
	slot, err := process.ResolveSlot()
	if err != nil {
		log.Error("ngcored: ", err)
		os.Exit(2)
	}
	log = log.WithFields(logger.Fields{"slot": slot, "role": string(entry)})

	ch, err := process.InheritChannel()
	if err != nil {
		log.Error("ngcored: inherit channel: ", err)
		os.Exit(2)
	}

	c := cycle.New(nil, log)
	mods := registerDemoModules()

	switch entry {
	case process.EntrypointWorker:
		w, err := worker.Init(worker.Options{
			Cycle:           c,
			Conf:            conf,
			Mods:            mods,
			Channel:         ch,
			Log:             log,
			Slot:            slot,
			Index:           slot,
			ConnectionLimit: 1024,
		})
		if err != nil {
			log.Error("ngcored: worker init: ", err)
			os.Exit(2)
		}
		w.Run()
	case process.EntrypointCacheManager:
		cachehelper.RunManager(worker.Options{
			Cycle:   c,
			Conf:    conf,
			Mods:    mods,
			Channel: ch,
			Log:     log,
			Slot:    slot,
		})
	case process.EntrypointCacheLoader:
		cachehelper.RunLoader(worker.Options{
			Cycle:   c,
			Conf:    conf,
			Mods:    mods,
			Channel: ch,
			Log:     log,
			Slot:    slot,
		})
	default:
		log.Error("ngcored: unknown entrypoint ", string(entry))
		os.Exit(2)
	}
}

func versionString() string {
	if buildVersion == "" {
		return "ngcored version: (devel)"
	}
	return "ngcored version: " + buildVersion
}

func versionVerboseString() string {
	commit := buildCommit
	if commit == "" {
		commit = "(unknown)"
	}
	return versionString() + "\nbuilt from commit: " + commit
}
