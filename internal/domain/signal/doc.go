/*
Package signal defines the notification vocabulary of the framework: the
Op names listeners handle, the immutable Event record, the Mailbox that
maps operations to handlers, and the Hub that multicasts events to every
live listener of a Kind.

# Listener contract

A Listener is a registry resource that can receive an Event. Most types
satisfy it by embedding model.Base, which owns a Mailbox and the
listener set; anything with an ID, a Kind and an Invoke method
participates. Invoke returns false when no handler is installed for the
event's operation; the event is dropped and that is deliberately not an
error.

# Multicast

Hub.Multicast delivers one event to every private listener of a Kind in
insertion order, skipping the listener whose ID matches the event's
source. The self-exclusion is what keeps model -> view -> model update
cycles from looping.
*/
package signal
