package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/easeaico/feelings/internal/appraisal"
	"github.com/easeaico/feelings/internal/feelings"
	"github.com/easeaico/feelings/internal/presets"
	"github.com/easeaico/feelings/internal/storage"
)

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range presets.Names() {
				p, _ := presets.Lookup(name)
				fmt.Fprintf(w, "%s\t%d links\t%s\n", p.Name, len(p.Links), p.Description)
			}
			return w.Flush()
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <feeling>...",
		Short: "Print feeling values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range args {
				v, err := g.GetFeeling(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, formatValue(v))
			}
			return nil
		},
	}
}

func (a *app) applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <feeling> <delta>",
		Short: "Apply a delta and cascade it through the graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid delta %q: %w", args[1], err)
			}
			return a.mutate(cmd.Context(), func(g *feelings.Graph) error {
				v, err := g.ApplyFeeling(args[0], delta)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", args[0], formatValue(v))
				return nil
			})
		},
	}
	// Negative deltas are arguments, not flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (a *app) effectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "effect <source> <target> <ratio>",
		Short: "Create or overwrite the effect of one feeling on another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratio, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid ratio %q: %w", args[2], err)
			}
			return a.mutate(cmd.Context(), func(g *feelings.Graph) error {
				return g.SetEffect(args[0], args[1], ratio)
			})
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every feeling with its value and effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			snap := g.CreateSnapshot()
			effects := make(map[string][]feelings.Effect, len(snap.Effects))
			for _, group := range snap.Effects {
				effects[group.Source] = group.Effects
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FEELING\tVALUE\tEFFECTS")
			for _, fv := range snap.Feelings {
				fmt.Fprintf(w, "%s\t%s\t%s\n", fv.Name, formatValue(fv.Value), formatEffects(effects[fv.Name]))
			}
			return w.Flush()
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the NPC's snapshot to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.StoreFormat
				if len(args) == 1 {
					format = formatFromPath(args[0], format)
				}
			}
			codec, err := storage.CodecByName(format)
			if err != nil {
				return err
			}
			g, err := a.loadGraph(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return codec.Encode(cmd.OutOrStdout(), g.CreateSnapshot())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := codec.Encode(f, g.CreateSnapshot()); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the file extension, then STORE_FORMAT)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the NPC's graph with a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = formatFromPath(args[0], a.cfg.StoreFormat)
			}
			codec, err := storage.CodecByName(format)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open snapshot file: %w", err)
			}
			defer f.Close()

			snap, err := codec.Decode(f)
			if err != nil {
				return err
			}
			g := feelings.NewGraph()
			if err := g.RestoreFromSnapshot(snap); err != nil {
				return err
			}
			m, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Save(cmd.Context(), a.npc, g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d feelings into %s\n", g.Len(), a.npc)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the file extension)")
	return cmd
}

func (a *app) appraiseCmd() *cobra.Command {
	var maxStimuli int
	cmd := &cobra.Command{
		Use:   "appraise <text>...",
		Short: "Let the configured model turn an event into stimuli and apply them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			llm, err := a.model(cmd.Context())
			if err != nil {
				return err
			}
			appraiser := appraisal.NewAppraiser(llm, appraisal.WithMaxStimuli(maxStimuli))
			text := strings.Join(args, " ")

			return a.mutate(cmd.Context(), func(g *feelings.Graph) error {
				outcomes, err := appraiser.Apply(cmd.Context(), g, text)
				if err != nil {
					return err
				}
				if len(outcomes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no feelings affected")
					return nil
				}
				for _, o := range outcomes {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%+g\t%s\n", o.Feeling, o.Delta, formatValue(o.Value))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&maxStimuli, "max", 0, "maximum number of stimuli to apply (0 for no limit)")
	return cmd
}

func (a *app) similarCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "List NPCs whose feelings are closest to --npc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = a.cfg.SimilarLimit
			}
			m, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			finder, ok := m.Backend().(storage.SimilarityFinder)
			if !ok {
				return fmt.Errorf("store driver %s does not support similarity search", a.cfg.StoreDriver)
			}
			matches, err := finder.Similar(cmd.Context(), a.npc, limit)
			if err != nil {
				return err
			}
			for _, match := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\n", match.Key, match.Distance)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of matches (default SIMILAR_LIMIT)")
	return cmd
}

func (a *app) keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List stored NPC keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			keys, err := m.Keys(cmd.Context())
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the stored graph of --npc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Delete(cmd.Context(), a.npc); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("no graph stored for %s", a.npc)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", a.npc)
			return nil
		},
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatEffects(effects []feelings.Effect) string {
	if len(effects) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(effects))
	for _, e := range effects {
		parts = append(parts, fmt.Sprintf("%s×%s", e.Target, formatValue(e.Ratio)))
	}
	return strings.Join(parts, ", ")
}

func formatFromPath(path, fallback string) string {
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return "yaml"
	case strings.HasSuffix(path, ".json"):
		return "json"
	default:
		return fallback
	}
}
