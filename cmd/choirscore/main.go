// Package main provides the entry point for the choirscore CLI.
//
// choirscore is a sheet-music viewer for choir rehearsals. It displays a
// score as one continuous vertical strip, lets the singer mark anchor
// positions, and jumps between them with a single key so page turns never
// interrupt the music.
//
// Usage:
//
//	choirscore view <score-directory>
//	choirscore anchors <score-directory>
//
// See --help for all available options.
package main

// main is the entry point for choirscore.
func main() {
	Execute()
}
