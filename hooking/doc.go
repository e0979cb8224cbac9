// Package hooking threads the four query lifecycle callbacks (plan,
// executor-start, executor-run, executor-end) through an ordered
// chain of handlers ending at the host engine. It replaces the classic
// "save the previous hook pointer" pattern with an explicit decorator
// chain: every handler wraps the next and must always delegate,
// whether or not its own logic is active, so that instrumentation
// consumers registered earlier keep working.
package hooking
