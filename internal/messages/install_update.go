package messages

// Install and update messages.
const (
	// InstallRootRequired indicates root path is required for install.
	InstallRootRequired = "installation root is required"
	// InstallSystemRequired indicates system is required for install.
	InstallSystemRequired = "install system is required"

	InstallFailedStatFmt        = "failed to stat %s: %w"
	InstallFailedReadFmt        = "failed to read %s: %w"
	InstallFailedWriteFmt       = "failed to write %s: %w"
	InstallCreateBackupFmt      = "create backup directory %s: %w"
	InstallStaleBackupFmt       = "backup directory %s already exists; run `driver-box-updater rollback` or `driver-box-updater discard` first"
	InstallStaleBackupDetailFmt = "backup directory %s already exists (created %s while updating %s -> %s); run `driver-box-updater rollback` or `driver-box-updater discard` first"
	InstallBackupPathFmt        = "back up %s: %w"
	InstallBackupUndoFailedFmt  = "%w; undo of backup %s failed: %v"
	InstallCommitFmt            = "remove backup directory %s: %w"
	InstallRestorePathFmt       = "restore %s: %w"
	InstallRestoreClearFmt      = "clear %s before restore: %w"
	InstallCarryForwardFmt      = "carry forward %s: %w"
	InstallSwapRemoveFmt        = "remove installed %s: %w"
	InstallSwapMoveFmt          = "move staged %s into place: %w"
	InstallManifestDecodeFmt    = "decode backup manifest %s: %w"
	InstallManifestEncodeFmt    = "encode backup manifest: %w"

	// UpdateSummaryBorder frames the confirmation summary.
	UpdateSummaryBorder  = "+----------------------------+"
	UpdateSummaryRowFmt  = "| %-13s%s |\n"
	UpdateSummaryFrom    = "Update From"
	UpdateSummaryTo      = "Update To"
	UpdateSummaryBinary  = "Binary"
	UpdateSummaryWebView = "WebView2"
	UpdateSummaryYes     = "Yes"
	UpdateSummaryNo      = "No"

	UpdateBackingUp         = "Backing up current installation..."
	UpdateDownloadingFmt    = "Downloading: %s\n"
	UpdateUnpacking         = "Unpacking..."
	UpdateUpdating          = "Updating..."
	UpdateRemovingBackups   = "Removing backups..."
	UpdateRestoringStates   = "Restoring states..."
	UpdateSucceededFmt      = "Updated driver-box %s -> %s.\n"
	UpdateErrorFmt          = "Error occurred: %v\n"
	UpdateRollbackFailedFmt = "Rollback failed, backup kept under %s: %v\n"
	UpdateStepFailedFmt     = "update failed while %s: %w"
	UpdateDowngradeFmt      = "downgrade from v%d to v%d is not supported"
	UpdateIntentRootMissing = "update intent requires an installation root"
	UpdateIntentVersions    = "update intent requires both versions"
	UpdateFetcherRequired   = "update requires an artifact fetcher"
	UpdateRollbackFmt       = "rollback failed: %w"

	// ReleaseCreateRequestFmt formats request creation errors.
	ReleaseCreateRequestFmt      = "create download request for %s: %w"
	ReleaseDownloadFailedFmt     = "download %s: %w"
	ReleaseInvalidContentTypeFmt = "%s returned content type %q (invalid version or binary type)"
	ReleaseCreateFileFmt         = "create download file %s: %w"
	ReleaseWriteFileFmt          = "write download file %s: %w"
	ReleaseCloseFileFmt          = "close download file %s: %w"

	ArchiveOpenFmt         = "open archive %s: %w"
	ArchiveEntryEscapesFmt = "archive entry %q resolves outside %s"
	ArchiveEntryFmt        = "extract %s: %w"

	MigrationUnsupportedFmt = "config migration from v%d to v%d is not implemented"

	ScratchCreateFmt = "create scratch directory under %s: %w"
	ScratchStatFmt   = "check scratch directory %s: %w"
)
