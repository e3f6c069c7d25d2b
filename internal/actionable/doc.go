// Package actionable keeps the set of pending user actions ("friend request
// received", "plan failed") that several views display at once.
//
// The core type is [Registry], a locked map keyed by item ID. Background
// goroutines add and remove items; views read point-in-time copies through
// [Registry.Snapshot] or keep a [Mirror] that follows the registry's
// add/remove events on the UI goroutine.
//
// # Identity
//
// Two items with the same ID are the same logical item. Adding an ID that is
// already present is a no-op and publishes nothing; removing an absent ID is
// likewise silent.
//
// # Execution and Removal
//
// [Registry.Execute] runs an item's action and nothing else. The registry
// never removes an item on its own: the action (or whatever business logic
// it triggers) must call [Registry.Remove]. An action that forgets to do so
// leaves a stale item behind; [Registry.ExecutedPending] lists those.
//
// # Usage
//
//	reg := actionable.NewRegistry(bus, logger)
//
//	// From a network goroutine:
//	id := actionable.NewID()
//	reg.Add(actionable.Item{
//	    ID:          id,
//	    GroupID:     "friends",
//	    Description: "ana wants to connect",
//	    Category:    actionable.CategoryFriendRequest,
//	    Action:      func() { accept(ana); reg.Remove(id) },
//	})
//
//	// In a view, on the UI goroutine:
//	for _, item := range reg.Snapshot() {
//	    render(item)
//	}
//
// # Thread Safety
//
// Add, Remove, Snapshot and the other read methods are safe for concurrent
// use. A [Mirror] must only be used from the UI goroutine.
package actionable
