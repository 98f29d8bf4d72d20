package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "driver-box-updater"
	// RootShort is the short description for the root command.
	RootShort = "Update an installed driver-box in place"
	RootLong  = "Downloads a driver-box release, replaces the installed executable (and the WebView2 bin directory when requested) and rolls every change back if any step fails."

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	FlagAppDirectory = "Root directory of driver-box (defaults to the current directory)"
	FlagVersionFrom  = "Version currently installed"
	FlagVersionTo    = "Version to update to"
	FlagBinaryType   = "Binary target of the release asset"
	FlagWebView      = "Download the build with the bundled WebView2 runtime"
	FlagYes          = "Skip the confirmation prompt"
	FlagNoPause      = "Do not wait for a keypress before exiting"
	FlagKeepScratch  = "Keep the scratch directory after the update for inspection"
	FlagConfig       = "Path to an updater.toml settings file (defaults to <app-directory>/updater.toml)"
	FlagVerbose      = "Enable debug logging"

	CLIResolveWorkingDirFmt  = "resolve working directory: %w"
	CLIExpandAppDirFmt       = "expand app directory %q: %w"
	CLIAppDirNotDirFmt       = "app directory %s is not a directory"
	CLIInvalidVersionFromFmt = "invalid --version-from: %w"
	CLIInvalidVersionToFmt   = "invalid --version-to: %w"

	ConfirmTitle      = "Proceed with the update?"
	ConfirmDeclined   = "Update cancelled."
	PauseFinished     = "Finished. Press Enter to continue..."
	PauseExit         = "Press Enter to exit..."
	DowngradeRejected = "Downgrade is not supported!"

	// RollbackUse is the manual rollback command name.
	RollbackUse         = "rollback"
	RollbackShort       = "Restore the installation from a backup left by an interrupted update"
	RollbackNoBackupFmt = "no update backup found under %s"
	RollbackDone        = "Installation restored from backup."

	// DiscardUse is the manual discard command name.
	DiscardUse   = "discard"
	DiscardShort = "Delete a backup left by an interrupted update and keep the current files"
	DiscardDone  = "Backup removed."
)
