// Package game implements a single Texas Hold'em table: seating, blinds,
// dealing, the betting state machine, showdown and state-change
// notifications.
//
// A Table owns its deck, pot and players. All mutations go through the table
// and are serialized by its lock; Player methods are thin wrappers that route
// the action back to the table. After every mutating operation the table
// publishes a StateChangedEvent carrying a consistent Snapshot.
//
// A hand runs Waiting -> Preflop -> Flop -> Turn -> River -> GameOver.
// Reaching the river deals the last card and goes straight to showdown.
// Reset returns the table to Waiting with a freshly shuffled deck.
package game
