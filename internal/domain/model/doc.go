// Package model provides Base, the embeddable listener host that models
// and controllers build on. A Base owns its mailbox and listener set and
// realizes self-service subscription: receiving a register event
// attaches the event's source as a listener, unregister detaches it, so
// the registries never broker individual subscribe calls.
package model
