// Package viz draws a running engine in the terminal with Bubble Tea.
//
// Bodies are projected through a rotating [Camera] onto a Braille [Canvas],
// two dots wide and four tall per cell. [App] picks a preset and hands over
// to the live [Model]; [LifeModel] shows the Game of Life.
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	.          - Single step while paused
//	Arrows/hjkl - Rotate the camera
//	+/-        - Zoom
//	[ ]        - Fewer/more steps per frame
//	T          - Cycle color themes
//	A          - Toggle axes
//	?          - Show help overlay
package viz
