package entities

// Task is a unit of background work dispatched onto the task manager.
type Task func()
