// Package tasks follows analysis tasks on the server with real-time state reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Analyze] : submit a job and track it
//     - Posts the request and receives a task id
//     - On submission failure, reports the error and re-enables submit without opening a channel
//     - Otherwise hands the task to the [Synchronizer]
//
//  2. [Engine.Watch] : track a task submitted earlier
//
// # Channels
//
// A [Channel] delivers [models.Snapshot] values for one task:
//   - [PushChannel] : WebSocket stream at /api/ws?task_id={id}, server cadence
//   - [PullChannel] : polls /api/task/{id} every [DefaultPollInterval]
//
// The [Synchronizer] starts push first. A push transport error before a terminal snapshot stops it
// and starts pull in its place, so at most one channel is active. Events from a stopped
// channel are discarded.
//
// # Terminal Outcome
//
// Every snapshot is projected onto [State] with [Project] and offered to a [Guard]. The guard
// fires on the first completed or failed snapshot only; later terminal snapshots change nothing.
// A completed task is rendered into a [ResultView]. A failed task surfaces its message.
// Either way the channel is torn down and submit is re-enabled.
//
// # State Reporting
//
// All operations send [State] copies on a channel with select/default, so a slow
// consumer never blocks tracking. The final state is also returned.
package tasks
