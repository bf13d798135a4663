// Package taskrunner runs the selected suites one after another through the
// retry controller and reports the aggregate verdict. It exposes the
// `Executor` interface plus helpers (`Factory`, `Resolve`) so the CLI can wire
// collaborators once through BuildDependencies while tests swap in fakes.
package taskrunner
