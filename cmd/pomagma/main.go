// Command pomagma runs the forward-chaining inference engine to a fixed
// point over a signature described by a theory and a language file, then
// writes the resulting structure to structure_out (spec.md §6 CLI).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/fritzo/pomagma-sub000/agenda"
	"github.com/fritzo/pomagma-sub000/carrier"
	"github.com/fritzo/pomagma-sub000/internal/snapshotfile"
	"github.com/fritzo/pomagma-sub000/internal/telemetry"
	"github.com/fritzo/pomagma-sub000/sampler"
	"github.com/fritzo/pomagma-sub000/scheduler"
	"github.com/fritzo/pomagma-sub000/signature"
	"github.com/fritzo/pomagma-sub000/vm"
	"go.uber.org/zap"
)

// config is read once at startup from the environment, following
// spec.md §6: the engine binary takes its positional structure paths on
// the command line and everything else from POMAGMA_* variables.
type config struct {
	structureIn  string
	structureOut string
	theoryFile   string
	languageFile string
	size         int
	threads      int
	logFile      string
}

func loadConfig(args []string) (config, error) {
	fs := flag.NewFlagSet("pomagma", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	var cfg config
	switch fs.NArg() {
	case 1:
		cfg.structureOut = fs.Arg(0)
		cfg.structureIn = os.Getenv("POMAGMA_STRUCTURE_IN")
	case 2:
		cfg.structureIn = fs.Arg(0)
		cfg.structureOut = fs.Arg(1)
	default:
		return config{}, fmt.Errorf("usage: pomagma [structure_in] structure_out")
	}

	cfg.theoryFile = os.Getenv("POMAGMA_THEORY_FILE")
	cfg.languageFile = os.Getenv("POMAGMA_LANGUAGE_FILE")
	cfg.logFile = os.Getenv("POMAGMA_LOG_FILE")

	size, err := envInt("POMAGMA_SIZE", 1023)
	if err != nil {
		return config{}, err
	}
	cfg.size = size

	threads, err := envInt("POMAGMA_THREADS", 1)
	if err != nil {
		return config{}, err
	}
	cfg.threads = threads

	if cfg.theoryFile == "" {
		return config{}, errors.New("POMAGMA_THEORY_FILE is required")
	}
	return cfg, nil
}

func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// Exit codes, per spec.md §6: 0 on reaching fixed point, non-zero on
// validation or parse failure.
const (
	exitOK              = 0
	exitUsageError      = 1
	exitParseError      = 2
	exitInconsistent    = 3
	exitCorruptSnapshot = 4
	exitIOError         = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsageError
	}

	log, runID, err := telemetry.New(cfg.logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOError
	}
	defer log.Sync()
	log = log.Named("pomagma")
	log.Info("starting", zap.String("structure_out", cfg.structureOut), zap.Int("size", cfg.size), zap.Int("threads", cfg.threads))

	c := carrier.New(cfg.size, nil)
	sig := signature.New(c)

	theory, err := os.Open(cfg.theoryFile)
	if err != nil {
		log.Error("open theory file", zap.Error(err))
		return exitIOError
	}
	defer theory.Close()
	if err := signature.ParseDeclarations(sig, theory); err != nil {
		log.Error("parse theory file", zap.Error(err))
		return exitParseError
	}

	var programs []*vm.Program
	if cfg.languageFile != "" {
		language, err := os.Open(cfg.languageFile)
		if err != nil {
			log.Error("open language file", zap.Error(err))
			return exitIOError
		}
		defer language.Close()
		programs, err = vm.ParseAll(sig, language)
		if err != nil {
			log.Error("parse language file", zap.Error(err))
			return exitParseError
		}
	}

	ag := agenda.New(blockCount(cfg.size))
	ag.AddAll(programs)
	machine := vm.New(sig)

	smp, err := sampler.New(sig, nil)
	if err != nil {
		log.Error("build sampler", zap.Error(err))
		return exitUsageError
	}

	sched := scheduler.New(sig, c, ag, machine, log, smp, int64(maxInt(cfg.threads, 1)))

	if cfg.structureIn != "" {
		snap, err := snapshotfile.Load(cfg.structureIn)
		if err != nil {
			log.Error("load structure_in", zap.Error(err))
			return exitIOError
		}
		if err := sig.Load(snap); err != nil {
			log.Error("validate structure_in", zap.Error(err))
			return exitCorruptSnapshot
		}
		log.Info("loaded snapshot", zap.String("run_id", snap.RunID().String()))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfgSched := scheduler.Config{
		Workers:        maxInt(cfg.threads, 1),
		CleanupThreads: 1,
		SampleThreads:  1,
		IdleSleep:      time.Millisecond,
	}
	if err := sched.RunConfig(ctx, cfgSched); err != nil {
		log.Error("scheduler run", zap.Error(err))
		return exitInconsistent
	}
	if !sched.Quiescent() {
		log.Warn("interrupted before fixed point")
		return exitInconsistent
	}

	out := snapshotfile.New().WithRunID(runID)
	if err := sig.Dump(out); err != nil {
		log.Error("dump structure", zap.Error(err))
		return exitIOError
	}
	if err := out.Save(cfg.structureOut); err != nil {
		log.Error("save structure_out", zap.Error(err))
		return exitIOError
	}

	log.Info("reached fixed point", zap.Int64("progress", sched.Progress()))
	return exitOK
}

func blockCount(size int) int {
	if size <= 0 {
		return 1
	}
	return (size + vm.DefaultBlockSize - 1) / vm.DefaultBlockSize
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
