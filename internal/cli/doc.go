// Package cli provides the terminal user interface components for fleetroster.
//
// The package uses [Bubbletea] for the interactive board and [Lipgloss] for
// styling. Components follow the standard Bubbletea Model-View-Update
// architecture and never touch storage directly: every change goes through
// a [fleet.Session].
//
// # Components
//
//   - Board: workshop grid, one block of a hundred units at a time, where
//     units are marked and then reported to or returned from the workshop
//
// Key bindings are declared with bubbles/key and listed by bubbles/help.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
