// Package events broadcasts task change notifications to every connected
// subscriber. Delivery is best effort: each subscriber has a bounded buffer
// and a full buffer drops the message for that subscriber only, so
// publishers never wait on a slow reader.
package events
