package dispatch

import "errors"

var errDropped = errors.New("dispatcher closed")

// ErrMalformedJob is returned when a queued message cannot be decoded.
var ErrMalformedJob = errors.New("malformed notification job")

// ErrDeliveriesClosed is returned by Worker.Run when the broker closes the
// delivery channel.
var ErrDeliveriesClosed = errors.New("delivery channel closed")
