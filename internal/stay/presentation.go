package stay

type CardVariant string

const (
	CardLoading      CardVariant = "loading"
	CardRevoked      CardVariant = "revoked"
	CardPreCheckin   CardVariant = "pre_checkin"
	CardCheckin      CardVariant = "checkin"
	CardMiddle       CardVariant = "middle"
	CardPreCheckout  CardVariant = "pre_checkout"
	CardCheckout     CardVariant = "checkout"
	CardPostCheckout CardVariant = "post_checkout"
)

// SelectCard is pure dispatch from the derived view to the card the guest
// sees. The loading placeholder wins while the clock is unresolved, and the
// manual override wins over any time-derived stage.
func SelectCard(v View) CardVariant {
	if !v.TimeVerified {
		return CardLoading
	}
	if v.Deactivated {
		return CardRevoked
	}

	switch v.Stage {
	case StageCheckin:
		return CardCheckin
	case StageMiddle:
		return CardMiddle
	case StagePreCheckout:
		return CardPreCheckout
	case StageCheckout:
		return CardCheckout
	case StagePostCheckout:
		return CardPostCheckout
	default:
		return CardPreCheckin
	}
}
