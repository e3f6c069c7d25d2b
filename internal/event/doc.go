// Package event provides the typed pub-sub bus through which notesync
// components announce state changes.
//
// Background collaborators (network delivery, AI completions, health
// polling) publish from whatever goroutine they run on. The [Bus] never calls
// handlers on the publisher's goroutine: every delivery is posted to the UI
// loop ([uithread.Loop]) and runs there, one event at a time, to completion.
//
// # Main Types
//
//   - [Event]: ID, [Type], Payload, Timestamp
//   - [Bus]: dispatch table keyed by [Type], plus glob patterns and wildcards
//   - [Handler]: func(Event), always invoked on the UI goroutine
//
// # Payload Contracts
//
// The payload type is fixed by the event type:
//
//	resource.added      ResourcePayload{ID, Kind, Title}
//	resource.updated    ResourcePayload
//	resource.deleted    ResourcePayload
//	config.changed      ConfigPayload{Path, Op}
//	message.added       MessagePayload{ConversationID, Sender, Text, Timestamp}
//	status.message      StatusPayload{Level, Text, Source}
//	plan.updated        PlanPayload{PlanID, Status, Detail}
//	actionable.added    actionable.Item
//	actionable.removed  string (item ID)
//
// Use the typed accessors ([MessageOf], [StatusOf], ...) rather than
// asserting on Payload directly.
//
// # Ordering and Failure
//
// Events published by one goroutine reach every subscriber in publish order.
// Events from different goroutines interleave in the order they reach the UI
// loop. A handler that panics is recovered and logged; the remaining
// handlers still receive the event and the publisher never notices.
//
// # Basic Usage
//
//	loop := uithread.New(logger)
//	bus := event.NewBus(loop, logger)
//
//	bus.Subscribe(event.MessageAdded, func(e event.Event) {
//	    msg, _ := event.MessageOf(e)
//	    chatView.Append(msg)
//	})
//
//	// From a network goroutine:
//	bus.Publish(event.NewMessageAdded("conv-1", "ana", "hi", time.Now()))
//
//	// On the UI goroutine:
//	loop.Drain()
package event
