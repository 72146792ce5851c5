package broker

import lsserrors "github.com/dbros-oss/lss-broker/pkg/errors"

type deliveryOutcome int

const (
	deliveryOther deliveryOutcome = iota
	deliveryTimeout
	deliveryUnreachable
)

// classifyDeliveryError maps a transport.Client error to the disposition
// spec.md §4.5's table switches on: timeout retries, unreachable evicts,
// anything else is logged only.
func classifyDeliveryError(err error) deliveryOutcome {
	switch {
	case lsserrors.Is(err, lsserrors.ErrTimeout):
		return deliveryTimeout
	case lsserrors.Is(err, lsserrors.ErrUnreachable):
		return deliveryUnreachable
	default:
		return deliveryOther
	}
}
