// Package engine holds the text of a document together with the indexes
// derived from it.
//
// An Engine keeps three views of the same text in step:
//
//   - the text itself
//   - a lineindex.Index converting byte offsets to line/column points
//   - a rowmap.RowMap converting lines to wrapped visual rows
//
// Both indexes are built on prefixsum.Index, so an edit touches only the
// lines it changes and position queries stay logarithmic.
//
// # Thread Safety
//
// All Engine operations are safe for concurrent use. Queries update the
// prefix-sum caches, so reads and writes share one mutex.
//
// # Basic Usage
//
//	e, err := engine.New(engine.WithContent("Hello, World!"))
//	if err != nil {
//		return err
//	}
//
//	e.Replace(7, 12, "Go") // "Hello, Go!"
//	e.Undo()               // "Hello, World!"
//
//	// The engine is a viewport.RowSource.
//	vp := viewport.New(e, 80, 24)
//
// # Settings
//
// ApplySettings rewraps every line; pair it with config.Watcher to follow
// edits to the settings file:
//
//	w.Run(ctx, func(s config.Settings) {
//		if err := e.ApplySettings(s); err == nil {
//			vp.ApplySettings(s)
//			vp.Refresh()
//		}
//	})
package engine
