// Package ui contains the Bubble Tea program that browses live eBPF objects.
// Model orchestrates messages while dedicated helpers own navigation, input,
// rendering and backend updates.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Key presses are decoded into state.Intent values (keys.go) and applied
//     to the state.Navigator, which owns the menu, list and detail screens.
//     Filter editing (input.go) consumes keys first while the prompt is open.
//   - An intent may ask for a single-program lookup; it runs as a tea.Cmd and
//     completes with detailLoadedMsg.
//
// Backend interactions:
//   - A backend.Watcher walks the kernel's maps and programs on a ticker.
//     Update waits for its events and hands them to the dispatcher, which
//     replaces the navigator's lists. Walk errors stay on the status line
//     until the next clean walk of that kind.
package ui
