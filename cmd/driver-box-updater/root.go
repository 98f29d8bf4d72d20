package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/markmybytes/driver-box-updater/internal/config"
	"github.com/markmybytes/driver-box-updater/internal/install"
	"github.com/markmybytes/driver-box-updater/internal/messages"
	"github.com/markmybytes/driver-box-updater/internal/progress"
	"github.com/markmybytes/driver-box-updater/internal/release"
	"github.com/markmybytes/driver-box-updater/internal/terminal"
	"github.com/markmybytes/driver-box-updater/internal/update"
	"github.com/markmybytes/driver-box-updater/internal/version"
)

// Test seams.
var (
	getwd         = os.Getwd
	getenv        = os.Getenv
	isInteractive = terminal.IsInteractive
	confirmFunc   = confirmUpdate
	runUpdate     = update.Run
)

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
)

type rootOptions struct {
	appDir      string
	from        string
	to          string
	binaryType  string
	webview     bool
	yes         bool
	noPause     bool
	keepScratch bool
	configPath  string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.appDir, "app-directory", "d", "", messages.FlagAppDirectory)
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, messages.FlagVerbose)
	cmd.Flags().StringVarP(&opts.from, "version-from", "s", "", messages.FlagVersionFrom)
	cmd.Flags().StringVarP(&opts.to, "version-to", "t", "", messages.FlagVersionTo)
	cmd.Flags().StringVarP(&opts.binaryType, "binary-type", "b", "", messages.FlagBinaryType)
	cmd.Flags().BoolVarP(&opts.webview, "webview", "w", false, messages.FlagWebView)
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, messages.FlagYes)
	cmd.Flags().BoolVar(&opts.noPause, "no-pause", false, messages.FlagNoPause)
	cmd.Flags().BoolVar(&opts.keepScratch, "keep-scratch", false, messages.FlagKeepScratch)
	cmd.Flags().StringVar(&opts.configPath, "config", "", messages.FlagConfig)
	_ = cmd.MarkFlagRequired("version-from")
	_ = cmd.MarkFlagRequired("version-to")
	_ = cmd.MarkFlagRequired("binary-type")

	cmd.AddCommand(newRollbackCmd(opts), newDiscardCmd(opts))
	return cmd
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	out := cmd.OutOrStdout()
	root, err := resolveAppDir(opts.appDir)
	if err != nil {
		return err
	}
	from, err := version.Parse(opts.from)
	if err != nil {
		return fmt.Errorf(messages.CLIInvalidVersionFromFmt, err)
	}
	to, err := version.Parse(opts.to)
	if err != nil {
		return fmt.Errorf(messages.CLIInvalidVersionToFmt, err)
	}
	settings, err := loadSettings(cmd, opts, root)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	pause := settings.UI.Pause && isInteractive()

	if version.IsDowngrade(from, to) {
		_, _ = failureColor.Fprintln(out, messages.DowngradeRejected)
		waitBeforeExit(cmd, pause, messages.PauseExit)
		return &SilentExitError{Code: 1}
	}

	intent := update.Intent{
		Root:       root,
		From:       from,
		To:         to,
		BinaryType: strings.TrimSpace(opts.binaryType),
		WebView:    opts.webview,
	}
	_, _ = fmt.Fprintln(out, update.Summary(intent))

	if !opts.yes && isInteractive() {
		ok, err := confirmFunc(messages.ConfirmTitle)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = warnColor.Fprintln(out, messages.ConfirmDeclined)
			return nil
		}
	}

	printer := progress.NewPrinter(out)
	fetcher := release.NewFetcher(settings.Release.BaseURL)
	fetcher.ChunkSize = settings.Download.ChunkSize
	fetcher.Reporter = printer
	fetcher.Logger = logger

	result, err := runUpdate(cmd.Context(), intent, update.Options{
		Fetcher:     fetcher,
		Reporter:    printer,
		System:      install.RealSystem{},
		Out:         out,
		Logger:      logger,
		KeepScratch: settings.Scratch.Keep,
	})
	logger.Debug("update finished", "state", result.State, "failed_step", result.FailedStep, "migration", result.Migration)
	if err != nil {
		switch {
		case result.RollbackFailed:
			_, _ = failureColor.Fprintf(out, messages.UpdateRollbackFailedFmt, filepath.Join(root, install.BackupDirName), err)
		case result.State != update.RolledBack:
			_, _ = failureColor.Fprintf(out, messages.UpdateErrorFmt, err)
		}
		waitBeforeExit(cmd, pause, messages.PauseFinished)
		return &SilentExitError{Code: 1}
	}
	_, _ = successColor.Fprintf(out, messages.UpdateSucceededFmt, from, to)
	waitBeforeExit(cmd, pause, messages.PauseFinished)
	return nil
}

// loadSettings reads updater.toml and lets explicitly set flags win over it.
func loadSettings(cmd *cobra.Command, opts *rootOptions, root string) (config.Settings, error) {
	path := config.DefaultPath(root)
	required := false
	if strings.TrimSpace(opts.configPath) != "" {
		expanded, err := homedir.Expand(opts.configPath)
		if err != nil {
			return config.Settings{}, err
		}
		path = expanded
		required = true
	}
	settings, err := config.Load(path, required, getenv)
	if err != nil {
		return config.Settings{}, err
	}
	if cmd.Flags().Changed("keep-scratch") {
		settings.Scratch.Keep = opts.keepScratch
	}
	if cmd.Flags().Changed("no-pause") {
		settings.UI.Pause = !opts.noPause
	}
	return settings, nil
}

// resolveAppDir expands and validates the installation root, defaulting to the working directory.
func resolveAppDir(raw string) (string, error) {
	dir := strings.TrimSpace(raw)
	if dir == "" {
		wd, err := getwd()
		if err != nil {
			return "", fmt.Errorf(messages.CLIResolveWorkingDirFmt, err)
		}
		dir = wd
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf(messages.CLIExpandAppDirFmt, dir, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf(messages.CLIExpandAppDirFmt, dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf(messages.CLIAppDirNotDirFmt, abs)
	}
	return abs, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: messages.RootUse})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func waitBeforeExit(cmd *cobra.Command, pause bool, prompt string) {
	if !pause {
		return
	}
	_ = terminal.WaitForKey(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
}

func confirmUpdate(title string) (bool, error) {
	ok := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
