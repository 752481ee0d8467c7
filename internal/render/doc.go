// Package render turns a heat History into raster frames and animations.
//
// Each frame stacks a line plot of the temperature profile, a time label,
// a one row thermal map of the wire and a horizontal colour bar. Frames are
// fed to an [Encoder] (GIF, MJPEG AVI or a PNG sequence) in ascending step
// order by [Export].
package render
