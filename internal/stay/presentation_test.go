package stay_test

import (
	"testing"

	"github.com/casaguide/concierge/internal/stay"
)

func TestSelectCardMapsEachStage(t *testing.T) {
	cases := []struct {
		stage stay.Stage
		card  stay.CardVariant
	}{
		{stay.StagePreCheckin, stay.CardPreCheckin},
		{stay.StageCheckin, stay.CardCheckin},
		{stay.StageMiddle, stay.CardMiddle},
		{stay.StagePreCheckout, stay.CardPreCheckout},
		{stay.StageCheckout, stay.CardCheckout},
		{stay.StagePostCheckout, stay.CardPostCheckout},
	}

	for _, tc := range cases {
		view := stay.View{Stage: tc.stage, TimeVerified: true}
		if got := stay.SelectCard(view); got != tc.card {
			t.Errorf("SelectCard(%s) = %s, want %s", tc.stage, got, tc.card)
		}
	}
}

func TestSelectCardLoadingWinsOverEverything(t *testing.T) {
	view := stay.View{Stage: stay.StageMiddle, TimeVerified: false, Deactivated: true}
	if got := stay.SelectCard(view); got != stay.CardLoading {
		t.Errorf("SelectCard = %s, want loading while clock unresolved", got)
	}
}

func TestSelectCardRevokedOverridesStage(t *testing.T) {
	for _, stage := range []stay.Stage{
		stay.StagePreCheckin, stay.StageCheckin, stay.StageMiddle,
		stay.StagePreCheckout, stay.StageCheckout, stay.StagePostCheckout,
	} {
		view := stay.View{Stage: stage, TimeVerified: true, Deactivated: true}
		if got := stay.SelectCard(view); got != stay.CardRevoked {
			t.Errorf("SelectCard(%s, deactivated) = %s, want revoked", stage, got)
		}
	}
}
