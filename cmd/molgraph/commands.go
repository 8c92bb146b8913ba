package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sanonone/molgraph/pkg/engine"
	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/view"
)

// app carries the flags shared by every subcommand and the engine they
// open.
type app struct {
	configPath  string
	logLevel    string
	sequence    string
	showMetrics bool

	eng  *engine.Engine
	root *cobra.Command
}

func newApp() *app {
	a := &app{}
	a.root = a.rootCmd()
	return a
}

// execute runs the command line and closes the engine whether or not the
// subcommand succeeded.
func (a *app) execute() error {
	defer a.close()
	return a.root.Execute()
}

func (a *app) close() {
	if a.eng != nil {
		a.eng.Close()
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "molgraph",
		Short:         "Query polypeptide backbones built from sequences",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.showMetrics {
				return writeMetrics(cmd.OutOrStdout())
			}
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
	pf.StringVarP(&a.sequence, "sequence", "s", "", "build an extra entity named \"seq\" from this sequence")
	pf.BoolVar(&a.showMetrics, "metrics", false, "print collected metrics after the command")

	var matchResidues bool
	selectCmd := &cobra.Command{
		Use:   "select <entity> <query>",
		Short: "List the atoms matching a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags view.Flags
			if matchResidues {
				flags |= view.MatchResidues
			}
			atoms, err := a.eng.Select(args[0], args[1], flags)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), atoms)
		},
	}
	selectCmd.Flags().BoolVarP(&matchResidues, "residues", "r", false, "select whole residues when one atom matches")

	root.AddCommand(
		&cobra.Command{
			Use:   "info [entity...]",
			Short: "Summarize entities (all when none is named)",
			RunE: func(cmd *cobra.Command, args []string) error {
				names := args
				if len(names) == 0 {
					names = a.eng.Entities()
				}
				out := make([]engine.Summary, 0, len(names))
				for _, name := range names {
					s, err := a.eng.Info(name)
					if err != nil {
						return err
					}
					out = append(out, s)
				}
				return writeYAML(cmd.OutOrStdout(), out)
			},
		},
		selectCmd,
		&cobra.Command{
			Use:   "within <entity> <x> <y> <z> <radius>",
			Short: "List the atoms within radius of a point",
			Args:  cobra.ExactArgs(5),
			RunE: func(cmd *cobra.Command, args []string) error {
				var v [4]float64
				for i, s := range args[1:] {
					f, err := strconv.ParseFloat(s, 64)
					if err != nil {
						return fmt.Errorf("argument %d: %w", i+2, err)
					}
					v[i] = f
				}
				if v[3] < 0 {
					return fmt.Errorf("radius must not be negative")
				}
				atoms, err := a.eng.FindWithin(args[0], geom.V(v[0], v[1], v[2]), v[3])
				if err != nil {
					return err
				}
				sort.Slice(atoms, func(i, j int) bool { return atoms[i].Index < atoms[j].Index })
				return writeYAML(cmd.OutOrStdout(), atoms)
			},
		},
		&cobra.Command{
			Use:   "trace <entity>",
			Short: "Show fragment roots and backbone torsions",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				roots, err := a.eng.FragmentRoots(args[0])
				if err != nil {
					return err
				}
				torsions, err := a.eng.Torsions(args[0])
				if err != nil {
					return err
				}
				return writeYAML(cmd.OutOrStdout(), struct {
					Roots    []engine.AtomRecord    `yaml:"roots"`
					Torsions []engine.TorsionRecord `yaml:"torsions"`
				}{roots, torsions})
			},
		},
	)
	return root
}

// open loads the configuration, builds its entities and keeps the engine
// for the subcommand.
func (a *app) open(logOut io.Writer) error {
	cfg, err := engine.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.sequence != "" {
		cfg.Entities = append(cfg.Entities, engine.EntityConfig{
			Name:   "seq",
			Chains: []engine.ChainConfig{{Name: "A", Sequence: a.sequence}},
		})
	}
	log, err := engine.NewLogger(logOut, cfg.LogLevel)
	if err != nil {
		return err
	}
	// A one-shot command has nothing to maintain in the background.
	cfg.MaintenanceInterval = 0

	eng, err := engine.Open(cfg.Options(log))
	if err != nil {
		return err
	}
	if err := eng.Populate(cfg); err != nil {
		eng.Close()
		return err
	}
	a.eng = eng
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeMetrics prints the molgraph counters and gauges of the default
// registry.
func writeMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "molgraph_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += fmt.Sprintf("{%s=%s}", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				out[name] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[name] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[name+"_count"] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return writeYAML(w, map[string]any{"metrics": out})
}
