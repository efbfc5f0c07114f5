// Package trace records what a generation run does and how long each part
// takes.
//
// Events are spans (begin/end pairs) and points. Each carries a Scope, and
// the tracer's Level decides which scopes are kept:
//
//   - LevelPhase: the run itself and its stages (parse, generate, tree, ...)
//   - LevelDetail: additionally one event per generated function
//   - LevelDebug: additionally every external tool invocation
//
// Tracers travel through the pipeline in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "generate", 0)
//	defer span.End("")
package trace
