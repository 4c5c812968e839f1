/*
Package dispatch implements the asynchronous side of the signal bus: a
multi-producer, single-consumer queue drained by one background
goroutine.

Any goroutine enqueues a Message; the consumer delivers one message at a
time, invoking every target in the message's order before taking the
next. The target set is snapshotted when the message is built, so
listeners added or removed while a message waits in the queue do not
change who is notified.

The consumer blocks on the queue rather than polling on an interval, and
Stop gives a clean shutdown: the intake closes, everything already
accepted is drained, and attached taps are closed. Enqueue makes
saturation observable through ErrQueueFull instead of growing without
bound.

Taps are buffered feeds of per-target delivery records, used by the
inspector's WebSocket stream. Publishing to a full tap drops the record
rather than stalling delivery.
*/
package dispatch
