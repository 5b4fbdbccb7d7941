// Package models defines domain entities and persistence interfaces for the schemax analysis client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs exchanged with the analysis server
//   - [AnalysisRequest] : Submission parameters for a schema analysis job
//   - [ConnectionParams] : Parameters for the connection helper endpoints
//   - [Snapshot] : One observed state of a server-side task
//   - [Result] : Terminal payload of a completed task (stats, dictionary, diagram, schema)
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Analysis] : A submitted analysis with its last known status and rendered artifacts
//
// Persistent entities implement [Record]. Repositories satisfy [Store] and, for analyses, [HistoryStore].
package models
