// Package jobs persists pipeline job state in SQLite and defines the job
// status machine. Every stage transition flows through Record.Transition,
// which refuses moves out of terminal states and permits a stage to rerun
// when its trigger event is delivered more than once.
package jobs
