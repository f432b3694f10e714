// Package workspace manages the open tabs of an editor session.
//
// Each tab owns an engine.Engine, and with it one buffer, one cursor set
// and one undo history; undo in one tab never touches another. The
// workspace adds what sits above single documents: tab order, the active
// tab, dirty tracking across tabs and the recent-files list.
//
//	ws := workspace.New(workspace.WithMaxRecent(10))
//	tab, err := ws.Open("main.go")
//	...
//	tab.Engine().InsertText("x", time.Now())
//	if err := ws.CloseActive(false); errors.Is(err, workspace.ErrUnsavedChanges) {
//		// ask the user
//	}
//
// Opening a file that is already open activates its tab. Closing the
// active tab activates its left neighbour, or the tab that slid into
// its place when it was the first.
package workspace
