// Package ecs bridges flipbook playback events into a [Donburi] world.
//
// [NewDonburiObserver] publishes load progress and phase changes as typed
// events. Subscribe to [ProgressEventType] and [PhaseEventType] in your ECS
// systems to react to them, e.g. to hide a loading overlay once done.
//
// Usage:
//
//	engine.SetObserver(ecs.NewDonburiObserver(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
