//go:build !hmap_paranoid

package hmap

const paranoiaEnabled = false
