package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/routeloader/internal/cli"
	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/extract"
	"github.com/toyz/routeloader/internal/utils"
	"github.com/toyz/routeloader/pkg/routeloader"
)

// app carries state shared by every command
type app struct {
	configFile string
	verbose    bool
	quiet      bool

	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "routeloader",
		Short: "Rewrite string based lazy routes into module loading code",
		Long: `routeloader finds loadChildren: '<path>#Symbol' declarations in
TypeScript and JavaScript route files and replaces each string with a
function that loads the module, so bundlers can split it into a chunk.

Options are read from routeloader.yaml in the working directory, from
ROUTELOADER_* environment variables and from flags, flags winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.v = config.NewViper(a.configFile)
			return config.ReadFile(a.v)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Config file (default: ./routeloader.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output and debug banners")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "Only show errors")

	cmd.AddCommand(
		transformCmd(a),
		watchCmd(a),
		codegensCmd(),
		configCmd(a),
		versionCmd(),
	)

	return cmd
}

// configFlags maps flag names to config keys
var configFlags = map[string]string{
	"delimiter":      config.KeyDelimiter,
	"aot":            config.KeyAOT,
	"module-suffix":  config.KeyModuleSuffix,
	"factory-suffix": config.KeyFactorySuffix,
	"loader":         config.KeyLoader,
	"gen-dir":        config.KeyGenDir,
	"inline":         config.KeyInline,
	"by-symbol":      config.KeyBySymbol,
	"debug":          config.KeyDebug,
	"project-root":   config.KeyProjectRoot,
}

// addConfigFlags registers one flag per config key
func addConfigFlags(flags *pflag.FlagSet) {
	d := config.Default()
	flags.String("delimiter", d.Delimiter, "Separator between module path and symbol name")
	flags.Bool("aot", d.AOT, "Resolve against compiler generated factories")
	flags.String("module-suffix", d.ModuleSuffix, "Suffix of generated module files (AOT)")
	flags.String("factory-suffix", d.FactorySuffix, "Suffix appended to symbol names (AOT)")
	flags.String("loader", d.Loader, "Default code generator")
	flags.String("gen-dir", d.GenDir, "Generated tree root, relative to the project root (AOT)")
	flags.Bool("inline", d.Inline, "Emit generated code on a single line")
	flags.Bool("by-symbol", d.BySymbol, "Track symbols through compiler summaries (AOT)")
	flags.Bool("debug", false, "Print a banner for every rewritten route")
	flags.String("project-root", "", "Project root both trees are mapped against (default: working directory)")
}

// loadConfig binds the command's config flags and loads the effective config
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	for name, key := range configFlags {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := a.v.BindPFlag(key, flag); err != nil {
				return config.Config{}, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}
	return config.Load(a.v)
}

func (a *app) diagnostics(out io.Writer) *utils.DiagnosticSystem {
	var d *utils.DiagnosticSystem
	switch {
	case a.quiet:
		d = utils.NewQuietDiagnostics()
	case a.verbose:
		d = utils.NewVerboseDiagnostics()
	default:
		d = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if out != nil {
		d.SetOutput(out, os.Stderr)
	}
	return d
}

func (a *app) logger() *slog.Logger {
	if !a.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// runFlags are shared by transform and watch
type runFlags struct {
	write       bool
	out         string
	syntaxTree  bool
	moduleRoots []string
}

func (f *runFlags) register(flags *pflag.FlagSet) {
	flags.BoolVarP(&f.write, "write", "w", false, "Rewrite files in place")
	flags.StringVarP(&f.out, "out", "o", "", "Write results into this directory, mirroring the project layout")
	flags.BoolVar(&f.syntaxTree, "syntax-tree", false, "Find declarations with a full syntax tree instead of scanning")
	flags.StringSliceVar(&f.moduleRoots, "module-root", nil, "Directories searched for bare module specifiers (default: <root>/src, <root>)")
	addConfigFlags(flags)
}

// newRunner builds the engine and runner for a command
func (a *app) newRunner(cmd *cobra.Command, f *runFlags) (*cli.Runner, *utils.DiagnosticSystem, error) {
	if f.write && f.out != "" {
		return nil, nil, fmt.Errorf("--write and --out are mutually exclusive")
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	root, err := cfg.Root()
	if err != nil {
		return nil, nil, err
	}

	// transformed sources go to stdout, keep it clean
	var diagOut io.Writer
	if !f.write && f.out == "" {
		diagOut = cmd.ErrOrStderr()
	}
	diagnostics := a.diagnostics(diagOut)
	logger := a.logger()

	opts := []routeloader.Option{
		routeloader.WithConfig(cfg),
		routeloader.WithLogger(logger),
		routeloader.WithHostDebug(a.verbose),
	}
	if f.syntaxTree {
		opts = append(opts, routeloader.WithExtractor(extract.NewSyntaxExtractor(logger)))
	}
	if len(f.moduleRoots) > 0 {
		opts = append(opts, routeloader.WithModuleRoots(f.moduleRoots...))
	}

	engine, err := routeloader.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	reporter := cli.NewDiagnosticReporter(a.verbose)
	runner := cli.NewRunner(engine, afero.NewOsFs(), diagnostics, reporter, cli.RunOptions{
		Write:  f.write,
		OutDir: f.out,
		Root:   root,
	})
	runner.SetStdout(cmd.OutOrStdout())

	diagnostics.Verbose("project root: %s", root)
	diagnostics.Verbose("loader: %s, aot: %t, gen dir: %q", cfg.Loader, cfg.AOT, cfg.GenDir)

	return runner, diagnostics, nil
}
