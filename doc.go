// Package intakekit provides a configurable file-intake and validation
// pipeline for Go with named selection sessions, type-specific previews,
// and staged storage of accepted files.
//
// Callers feed batches of file handles into a [Session]; the session runs
// each batch through a fixed-order validation pipeline (type filter, size
// bounds, count and aggregate limits, aspect-ratio checks, duplicate
// detection), assigns tracking IDs to accepted entries, and reports the
// accept/reject split in a [Result]. Selection state is keyed by session
// name, so many independent intakes coexist in one process.
//
// # Sessions
//
// Sessions are configured once and validated up front; a bad configuration
// never reaches intake:
//
//	s, err := intakekit.NewSession(intakekit.SessionConfig{
//	    Name:     "uploads",
//	    Multiple: true,
//	    Accept:   []string{"image", ".pdf"},
//	    MaxFileSize: 10 * intakekit.MB,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := s.Add(ctx, intakekit.NewMemHandle("photo.png", data))
//	if err != nil {
//	    // the whole batch was rejected
//	}
//	for _, e := range res.Accepted {
//	    fmt.Println(e.TrackingID, e.Name())
//	}
//
// The fluent [Builder] and its presets cover the common shapes:
//
//	s, err := intakekit.ForImages().
//	    Name("gallery").
//	    Multiple(20).
//	    RejectDuplicates().
//	    Build()
//
// # Validation
//
// A batch passes through the stages in a fixed order: single-selection
// guard, count guard, type filter, per-file size bounds, aggregate size
// bounds, image aspect ratio, video aspect ratio, duplicate detection.
// Failure handling is asymmetric: a batch of exactly one file fails
// whole on any violation, while larger batches drop the offenders, log
// them at Warn, and admit the rest. Count and aggregate-size violations
// always reject the whole batch. The [Result] carries both sides:
//
//	res, err := s.Add(ctx, handles...)
//	if !res.OK() {
//	    for _, rej := range res.Rejected {
//	        fmt.Println(rej.Name, rej.Reason)
//	    }
//	}
//
// # Previews
//
// Accepted entries are classified (media, PDF, Word, text, generic) and
// routed to renderers registered on a [PreviewDispatcher]. Renderers
// append one node per entry to a [Surface]; removing the entry evicts
// the node again:
//
//	d := intakekit.NewPreviewDispatcher(intakekit.NewMemorySurface(), nil)
//	d.Register(intakekit.KindMedia, myThumbnailer)
//
//	s, _ := intakekit.NewSession(cfg, intakekit.WithPreview(d))
//	defer d.BindEvents(s.Events())()
//
// # Removal Events
//
// Removals publish on a per-session topic and a generic one; subscribers
// receive the session name, tracking ID, and file name:
//
//	stop := s.Events().OnRemoval(func(evt intakekit.RemovalEvent) {
//	    fmt.Println("removed", evt.FileName)
//	})
//	defer stop()
//
// # Entry Selectors
//
// Composable selectors filter accepted entries without copying them:
//
//	large := s.Select(intakekit.And(
//	    intakekit.Name("*.png"),
//	    intakekit.SizeBetween(1*intakekit.MB, 0),
//	))
//
// # Drop Folders
//
// A [DropFolder] feeds a session from a watched directory. Files are
// offered once they stop growing; rejections are logged and the watch
// continues:
//
//	d, err := intakekit.NewDropFolder(intakekit.DropFolderConfig{
//	    Dir:          "./inbox",
//	    Pattern:      "*.csv",
//	    ScanExisting: true,
//	}, s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
// # Staging
//
// The store subpackage persists accepted entries under their tracking
// IDs (in memory, one file per entry under a directory, or AES-256-GCM
// encrypted) and keeps the store in step with the session:
//
//	st, err := store.NewDir("./staging")
//	sync := store.SyncSession(s, st)
//	res, err := sync.Add(ctx, handles...)
//
// # Error Handling
//
// Violations carry a machine-readable [Reason] alongside the offending
// file name:
//
//	_, err := s.Add(ctx, handle)
//	if intakekit.IsReason(err, intakekit.ReasonSizeOutOfRange) {
//	    // too large or too small
//	}
//
//	var ie *intakekit.IntakeError
//	if errors.As(err, &ie) {
//	    fmt.Printf("file: %s, reason: %s\n", ie.File, ie.Reason)
//	}
//
// # Configuration
//
// Sessions can be configured from the environment with the BEAVER_INTAKE_
// prefix, or programmatically via [SessionConfig]:
//
//	cfg, err := intakekit.GetConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := intakekit.Open(cfg.SessionConfig())
package intakekit
