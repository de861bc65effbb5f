// Package gpu is the accelerator runtime side of stockham: backends that
// own device contexts, buffers and streams, and a typed Executor that bakes
// a stockham.Plan against a device envelope and runs it.
//
// A backend must be registered before use. The MockBackend executes launch
// lists on the CPU, one launch at a time, and is meant for tests and for
// checking schedules without a device. It handles interleaved complex data
// only.
package gpu
