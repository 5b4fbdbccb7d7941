// Package services defines the [Service] interface to the schema analysis server and implements it over HTTP.
//
// # Endpoints
//
// [APIService] talks to the server's JSON API:
//   - POST /api/analyze : submit an [models.AnalysisRequest], returns a task id
//   - GET /api/task/{id} : current task snapshot, used by the polling channel
//   - GET /api/ws?task_id={id} : WebSocket stream of snapshots (URL built by [APIService.TaskSocketURL])
//   - POST /api/test-connection, POST /api/list-databases : connection helpers
//
// Outbound requests share one [rate.Limiter] when a limit is configured.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx response
//   - [shared.ErrTaskNotFound] : the server does not know the task id
//   - [shared.ErrInvalidConfig] : the base URL cannot be turned into a socket URL
package services
