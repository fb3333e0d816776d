package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/adk/model"

	"github.com/easeaico/feelings/internal/config"
	"github.com/easeaico/feelings/internal/feelings"
	"github.com/easeaico/feelings/internal/models"
	"github.com/easeaico/feelings/internal/presets"
	"github.com/easeaico/feelings/internal/storage"
)

// newModel is replaced in tests.
var newModel = models.New

// app holds the state shared by every command of one invocation.
type app struct {
	cfg        config.Config
	npc        string
	preset     string
	presetFile string
	manager    *storage.Manager
}

// run builds the command tree, executes args and releases the store.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := a.manager.Close(); closeErr != nil {
		slog.Error("failed to close store", "error", closeErr.Error())
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "feelings",
		Short: "Inspect and drive NPC feeling graphs",
		Long: `feelings keeps one cascading feeling graph per NPC.

Graphs are stored under the --npc key using STORE_DRIVER (file, sqlite,
postgres or memory). A graph that does not exist yet is seeded from --preset
or --preset-file.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.npc, "npc", "default", "snapshot key of the NPC")
	flags.StringVar(&a.preset, "preset", "", "built-in preset for new graphs (default DEFAULT_PRESET)")
	flags.StringVar(&a.presetFile, "preset-file", "", "YAML preset for new graphs, overrides --preset")

	root.AddCommand(
		a.presetsCmd(),
		a.getCmd(),
		a.applyCmd(),
		a.effectCmd(),
		a.showCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.appraiseCmd(),
		a.similarCmd(),
		a.keysCmd(),
		a.deleteCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.cfg = config.Load()

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: a.cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	slog.Debug("configuration loaded", "store_driver", a.cfg.StoreDriver, "npc", a.npc)
	return nil
}

// store opens the configured backend on first use.
func (a *app) store(ctx context.Context) (*storage.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}
	backend, err := storage.Open(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", a.cfg.StoreDriver, err)
	}
	a.manager = storage.NewManager(backend)
	return a.manager, nil
}

// seed returns the preset that initializes graphs without a snapshot.
func (a *app) seed() (presets.Preset, error) {
	if a.presetFile != "" {
		f, err := os.Open(a.presetFile)
		if err != nil {
			return presets.Preset{}, fmt.Errorf("failed to open preset file: %w", err)
		}
		defer f.Close()
		return presets.LoadYAML(f)
	}

	name := a.preset
	if name == "" {
		name = a.cfg.DefaultPreset
	}
	p, ok := presets.Lookup(name)
	if !ok {
		return presets.Preset{}, fmt.Errorf("unknown preset %q (available: %v)", name, presets.Names())
	}
	return p, nil
}

// loadGraph returns the NPC's graph, seeding it when nothing is stored.
func (a *app) loadGraph(ctx context.Context) (*feelings.Graph, error) {
	m, err := a.store(ctx)
	if err != nil {
		return nil, err
	}
	g := feelings.NewGraph()
	_, err = m.LoadOrInit(ctx, a.npc, g, func(g *feelings.Graph) error {
		p, err := a.seed()
		if err != nil {
			return err
		}
		return p.Apply(g)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// mutate loads the graph, runs fn and saves the graph when fn succeeds.
func (a *app) mutate(ctx context.Context, fn func(*feelings.Graph) error) error {
	g, err := a.loadGraph(ctx)
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	return a.manager.Save(ctx, a.npc, g)
}

func (a *app) model(ctx context.Context) (model.LLM, error) {
	m, err := newModel(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", a.cfg.LLMProvider, err)
	}
	return m, nil
}
