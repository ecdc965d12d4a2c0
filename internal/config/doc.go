// Package config loads the editor view settings that drive line layout and
// scrolling.
//
// Settings live in an [editor] table of a TOML or YAML file:
//
//	[editor]
//	tab_size = 4
//	word_wrap_column = 80
//	word_wrap_at_word = true
//	scroll_off = 3
//	smooth_scroll = true
//	layout_cache_size = 4096
//
// Keys missing from the file keep their defaults, and a missing file yields
// Default(). A Watcher reloads the file when it changes on disk.
package config
