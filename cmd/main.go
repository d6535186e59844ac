package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"

	"github.com/Akashdeep-Patra/zed-page-view/internal/app"
	"github.com/Akashdeep-Patra/zed-page-view/internal/common"
	"github.com/Akashdeep-Patra/zed-page-view/internal/config"
	"github.com/Akashdeep-Patra/zed-page-view/internal/deck"
	"github.com/Akashdeep-Patra/zed-page-view/internal/logging"
	"github.com/Akashdeep-Patra/zed-page-view/internal/replay"
	"github.com/Akashdeep-Patra/zed-page-view/internal/watcher"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

// Build-time variables injected via ldflags by GoReleaser / Taskfile.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// ── Resource tuning ─────────────────────────────────────────────
	//
	// A pager spends most of its time waiting for terminal input and
	// file events. Rendering and prefetch loads fit in 2 OS threads, so
	// several instances across terminals don't compete for every core.
	//
	// If the user explicitly sets GOMAXPROCS, we respect that.
	if os.Getenv("GOMAXPROCS") == "" {
		maxProcs := 2
		if n := runtime.NumCPU(); n < maxProcs {
			maxProcs = n
		}
		runtime.GOMAXPROCS(maxProcs)
	}

	// Cap the GC target at 64 MiB. Rendered pages are cached and pooled;
	// the soft limit makes the GC reclaim dropped ones early.
	debug.SetMemoryLimit(64 * 1024 * 1024)
}

func main() {
	rootCmd := buildRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zpv:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zpv",
		Short: "A paging viewer for a directory of documents",
		Long: `zpv shows every markdown and text file in a directory as a page and
lets you swipe between them with the keyboard or the mouse. Pages next to
the visible one are prepared ahead of time, and the deck follows files
being added, removed, and edited.`,
		RunE:          runApp,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"zpv %s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s\n",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	))

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default $XDG_CONFIG_HOME/zpv/config.yaml)")
	rootCmd.PersistentFlags().StringP("path", "p", ".", "Directory of pages")

	rootCmd.Flags().String("axis", "", "Paging direction: horizontal or vertical")
	rootCmd.Flags().StringP("start", "s", "", "First page to show: a 1-based number or a file name")

	rootCmd.AddCommand(buildVersionCmd())
	rootCmd.AddCommand(buildCompletionCmd())
	rootCmd.AddCommand(buildListCmd())
	rootCmd.AddCommand(buildReplayCmd())
	rootCmd.AddCommand(buildConfigCmd())

	return rootCmd
}

// loadConfig reads the config named by --config and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if f := cmd.Flags().Lookup("axis"); f != nil && f.Changed {
		cfg.Axis = f.Value.String()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func openLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, closeLog, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	return log, closeLog, nil
}

func runApp(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("path")
	start, _ := cmd.Flags().GetString("start")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	d, err := deck.New(dir, cfg.Extensions,
		deck.WithLogger(log),
		deck.WithWordWrap(cfg.WordWrap),
	)
	if err != nil {
		return fmt.Errorf("opening deck: %w", err)
	}
	log.Info("starting",
		zap.String("version", version),
		zap.String("dir", d.Dir()),
		zap.Int("pages", d.PageCount()),
		zap.String("config", cfg.File))

	model := app.New(app.Options{Config: cfg, Deck: d, Log: log, Start: start})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Watch the deck directory only; nested folders are not pages.
	if cfg.Watch {
		keep := func(name string) bool { return deck.Matches(name, d.Extensions()) }
		watchCh, stop, watchErr := watcher.Watch(d.Dir(), keep, cfg.WatchDebounce())
		if watchErr != nil {
			log.Warn("file watching disabled", zap.Error(watchErr))
		} else {
			defer stop()
			go func() {
				for range watchCh {
					p.Send(common.RescanMsg{})
				}
			}()
		}
	}

	_, err = p.Run()
	return err
}

// buildListCmd creates `zpv ls`, which prints the pages of a directory in
// the order the pager shows them.
func buildListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the pages of a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("path")
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			entries, err := deck.Scan(dir, cfg.Extensions)
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), listTable(entries))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output pages as JSON")

	return cmd
}

// listTable renders entries as borderless, space-aligned columns.
func listTable(entries []deck.Entry) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).BorderBottom(false).
		BorderLeft(false).BorderRight(false).
		BorderHeader(false).BorderColumn(false).
		Headers("#", "NAME", "KIND", "SIZE", "MODIFIED").
		StyleFunc(func(_, col int) lipgloss.Style {
			st := lipgloss.NewStyle().PaddingRight(2)
			if col == 0 || col == 3 {
				st = st.Align(lipgloss.Right)
			}
			return st
		})
	for i, e := range entries {
		t.Row(strconv.Itoa(i+1), e.Name, string(e.Kind), strconv.FormatInt(e.Size, 10), e.ModTime.Format("2006-01-02 15:04"))
	}
	return t.String()
}

// buildReplayCmd creates `zpv replay`, which plays a script of host calls
// against a pager and prints what it reports.
func buildReplayCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Run a pager script and print its event trace",
		Long: `Run a pager script and print its event trace.

A script is JSON (comments and trailing commas allowed):

  {
    "pages": 5, "width": 80, "height": 24, "prefetch": 1,
    "steps": [
      {"op": "appear"},
      {"op": "reload", "index": 0},
      {"op": "drag", "delta": 30},
      {"op": "release", "velocity": 2},
      {"op": "tick", "ms": 200},
    ],
  }

Ops: ` + fmt.Sprint(replay.Ops),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			script, err := replay.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			log := zap.NewNop()
			if verbose {
				log, _ = zap.NewDevelopment()
			}
			defer func() { _ = log.Sync() }()

			trace, runErr := replay.Run(script, log)
			out := cmd.OutOrStdout()
			for _, line := range trace {
				fmt.Fprintln(out, line)
			}
			var stepErr *replay.StepError
			if errors.As(runErr, &stepErr) {
				return fmt.Errorf("%s: %w", args[0], stepErr)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log pager internals to stderr")

	return cmd
}

// buildConfigCmd creates `zpv config init|show`.
func buildConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.WriteDefault(path, force); err != nil {
				if errors.Is(err, config.ErrExists) {
					return fmt.Errorf("%w (use --force to replace it)", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.File != "" {
				fmt.Fprintf(out, "# from %s\n", cfg.File)
			} else {
				fmt.Fprintln(out, "# defaults (no config file found)")
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

// buildVersionCmd creates the `zpv version` subcommand supporting --json.
func buildVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
				"go":      runtime.Version(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(out, "zpv %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
			fmt.Fprintf(out, "  go:      %s\n", runtime.Version())
			fmt.Fprintf(out, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}

// buildCompletionCmd creates the `zpv completion` subcommand for shell completions.
func buildCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for zpv.

Examples:
  # Bash (add to ~/.bashrc)
  zpv completion bash > /etc/bash_completion.d/zpv

  # Zsh (add to ~/.zshrc before compinit)
  zpv completion zsh > "${fpath[1]}/_zpv"

  # Fish
  zpv completion fish > ~/.config/fish/completions/zpv.fish

  # PowerShell
  zpv completion powershell > zpv.ps1`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}

	return cmd
}
