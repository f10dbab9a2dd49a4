/*
Package events provides an in-memory event broker for coordinator
pub/sub messaging.

It implements a lightweight event bus for broadcasting topology
changes (group status transitions, couple lifecycle) to interested
subscribers, so components like metrics collection or an audit log can
react without polling the topology state directly.

# Architecture

Publish Flow:
 1. Publisher calls broker.Publish(event)
 2. Event added to the main event channel (buffered; Publish blocks
    while the buffer is full, until the broker is stopped)
 3. Broadcast loop receives the event
 4. Event sent to every subscriber channel
 5. Full subscriber buffers skip the event rather than block

Subscribe Flow:
 1. Subscriber calls broker.Subscribe()
 2. A new buffered channel is registered
 3. Subscriber reads events off that channel in its own goroutine
 4. broker.Unsubscribe(sub) closes and deregisters the channel

# Event Types

Group Events:
  - group.status_changed: declared for a group's status transition;
    nothing in this module publishes it

Couple Events:
  - couple.created: couple_groups formed a new couple
  - couple.broken: break_couple tore one down
  - couple.frozen / couple.unfrozen: freeze_couple / unfreeze_couple

Node Events:
  - node.stalled: declared for a node whose statistics aged past
    StalledAfter; nothing in this module publishes it
  - node.detached: group_detach_node removed a node from its group

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			switch event.Type {
			case events.EventCoupleBroken:
				handleCoupleBroken(event)
			}
		}
	}()

	broker.Publish(&events.Event{
		Type:    events.EventCoupleBroken,
		Message: "couple 1:2:3 broken",
		Metadata: map[string]string{"couple_id": "1:2:3"},
	})

# Limitations

In-memory only, no persistence, no replay, no delivery guarantee —
a slow or absent subscriber simply misses events published while it
wasn't keeping up. None of this repo's own correctness depends on
event delivery; events exist purely for observers.
*/
package events
