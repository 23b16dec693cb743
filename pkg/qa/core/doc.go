// Package core contains the worker loop shared by every stage: the
// locomotive that pulls messages from a stage queue, runs the stage
// function and pushes results to the successor queue, plus the context
// helpers that tell a running worker which stage and slot it serves. It does
// not know about registries or graphs; packages pool and automator build on
// it.
package core
