// Package exec runs untrusted source code inside resource-capped sandboxes.
//
// The language set is closed: each supported language maps to a fixed
// pipeline (source filename, build+run command, container image). The
// command carries its own inner timeout bounding the user program; the
// orchestrator wraps the whole invocation in an outer timeout bounding
// provisioning, compilation and teardown.
//
// Components:
//   - Language / Pipeline: closed tagged set plus lookup table
//   - SandboxRunner: capability boundary (Provision, Execute, Teardown)
//     so the isolation technology is swappable
//   - DockerRunner: docker-CLI implementation, network disabled,
//     128 MiB memory, 0.5 CPU
//   - Orchestrator: per-run workspace lifecycle with unconditional
//     teardown and a cap on concurrent executions
//
// Sandbox failures (compile error, crash, timeout) are folded into the
// returned RunResult, never raised as errors; the only error a caller of
// Run sees for a supported language is a cancelled context.
package exec
