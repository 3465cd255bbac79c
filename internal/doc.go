// Package internal runs TEAL analyses.
//
// Engine reads a program, builds its control flow graph, runs every enabled
// detector over it and drops findings suppressed by nolint comments. Graph
// exports requested by findings are written next to the report.
//
// Usage:
//
//	engine := internal.NewEngine(internal.WithExportDir("out"))
//	report, err := engine.Run("approval.teal")
//	if err != nil {
//	    // handle error
//	}
//	for _, f := range report.Findings {
//	    fmt.Println(f.Detector, f.Message)
//	}
//
// Watcher re-runs the engine whenever a watched .teal file is written.
package internal
