// Package events provides types and interfaces for loosely coupled
// communication between the engine's services.
//
// Services emit events without knowing which handlers will process them.
// The review service publishes review-completed events this way, and the
// reminder planner publishes notification-dispatch requests that the task
// layer turns into background deliveries. This keeps the service packages
// free of direct dependencies on the task package.
package events
