// Package journal implements the entry write pipeline.
//
// Create runs the following steps in order:
//
//	validate -> generate (best effort, bounded) -> persist (always) -> return
//
// A generation failure never fails the request. The entry is stored with
// FallbackText and Result.Fallback is set so callers can adjust their message.
package journal
