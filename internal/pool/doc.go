// Package pool runs a fixed number of workers over a shared job channel.
// Each worker hands its jobs to an Executor one at a time, so the number of
// jobs in progress never exceeds the pool size.
package pool
