//go:build hmap_paranoid

package hmap

// paranoiaEnabled turns on the extra routing assertions inside write paths.
// Never set in release builds: the checks re-hash every key.
const paranoiaEnabled = true
