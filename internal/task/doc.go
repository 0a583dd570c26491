// Package task manages background job queuing, processing, and lifecycle.
// Reminder notifications are delivered through it so a slow or failing
// delivery channel never blocks planning, and unfinished deliveries survive
// application restarts.
package task
