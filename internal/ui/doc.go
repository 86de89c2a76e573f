// Package ui contains the Bubble Tea program behind the SteamServerUI
// console dashboard. The Model type focuses on message orchestration, while
// dedicated helpers own navigation, input, rendering, and state updates.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages.
//   - Key presses go to the active form first (sign in, setup wizard,
//     setting editor, backend editor, console command or confirmation).
//     Everything else is routed through a typed handler registry so each
//     tea.Msg is handled by a focused function.
//   - Navigation helpers (navigation.go) switch tabs and views and move list
//     cursors. Filter helpers (input.go) keep text entry for list filters
//     isolated from the event loop.
//
// Streams:
//   - The Console, Events and Logs tabs are LiveStreamPanels. Each owns a
//     bounded console.Buffer and one stream.Subscription per endpoint.
//     Subscriptions deliver into a single channel that Update drains with
//     waitForStreamEvent.
//   - A stream.Gate is open only while the home view shows, so streams stop
//     reconnecting behind the login and backend screens.
//
// Polled data:
//   - A backend.Watcher polls status, players and backups; applyBackendEvent
//     hands results to the dispatcher, which fills the stores under
//     internal/state and refreshes the on-screen lists.
//   - One-shot actions run through the internal/ui/command bus and come back
//     as typed result messages.
package ui
