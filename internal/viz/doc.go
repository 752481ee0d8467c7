// Package viz renders heat runs in the terminal.
//
//   - [PlotProfile] and [PlotProbe]: asciigraph line plots
//   - [HeatStrip]: the wire as a row of coloured cells
//   - [Canvas]: Braille-based pixel canvas
//   - [Model]: Bubble Tea replay of a History, or a live run
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from t = 0
//	T     - Cycle color themes
//	[]    - Step back/forward
//	?     - Show help overlay
//	Q     - Quit
package viz
