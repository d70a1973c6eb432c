// Package viz draws the domino scene in a terminal.
//
// [Renderer] implements render.Renderer on a Braille [Canvas]: every domino
// is a coloured wireframe box, the sphere a set of rings and the ground a
// grid, all projected through an orbiting [Camera]. [Model] is the Bubble Tea
// program that drives a scene.Session from its tick messages.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Restart the scene
//	←/→   - Orbit the camera
//	↑/↓   - Raise/lower the camera
//	+/-   - Zoom
//	T     - Cycle colour themes
//	?     - Show help overlay
//	Q     - Quit
package viz
