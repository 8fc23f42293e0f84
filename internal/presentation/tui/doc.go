// Package tui holds the terminal presentation helpers used by the player:
// markdown rendering, the banner and category badges.
package tui
