// Package discovery locates installed packages and launch fragments.
//
// Packages are found through the ament resource index of every prefix listed in
// AMENT_PREFIX_PATH, plus any extra prefixes configured by the caller.
package discovery
