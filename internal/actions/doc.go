// Package actions reports scan results to the GitHub Actions runner: the pull
// request number from the event payload, per-finding annotations, step
// outputs, the job summary and the failure message.
package actions
