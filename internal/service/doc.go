// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill the engine's operations.
//
// Services receive dependencies through constructor injection and apply
// transactional boundaries when operations span multiple stores. They
// translate store-specific errors to application-level errors so the API
// layer can map them to HTTP status codes without knowing about the
// persistence implementation.
//
// The larger flows live in sub-packages: internal/service/review processes
// answers, internal/service/sweep runs the overdue state machine, and
// internal/service/reminder plans notifications. The card lifecycle
// operations (create, list due, stats) live here.
package service
