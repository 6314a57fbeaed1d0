package entity

import (
	"testing"

	domainerrors "coderr/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTier(t OfferType, price, days int) *OfferDetail {
	return &OfferDetail{
		Title:              string(t) + " tier",
		Revisions:          1,
		DeliveryTimeInDays: days,
		Price:              price,
		Features:           []string{"Logo Design"},
		OfferType:          t,
	}
}

func newValidOffer() *Offer {
	return &Offer{
		ID:          1,
		UserID:      7,
		Title:       "Website Starter",
		Description: "Everything to get started",
		Details: []*OfferDetail{
			newTier(OfferTypeBasic, 50, 3),
			newTier(OfferTypeStandard, 100, 5),
			newTier(OfferTypePremium, 200, 7),
		},
	}
}

func fieldsOf(t *testing.T, err error) domainerrors.FieldErrors {
	t.Helper()

	var validationErr *domainerrors.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)

	return validationErr.Fields()
}

func TestOffer_ValidateForCreate_Success(t *testing.T) {
	offer := newValidOffer()

	assert.NoError(t, offer.ValidateForCreate())
}

func TestOffer_ValidateForCreate_TierSet(t *testing.T) {
	tests := []struct {
		name    string
		details []*OfferDetail
	}{
		{
			name:    "two tiers",
			details: []*OfferDetail{newTier(OfferTypeBasic, 1, 1), newTier(OfferTypeStandard, 1, 1)},
		},
		{
			name: "four tiers",
			details: []*OfferDetail{
				newTier(OfferTypeBasic, 1, 1), newTier(OfferTypeStandard, 1, 1),
				newTier(OfferTypePremium, 1, 1), newTier(OfferTypePremium, 1, 1),
			},
		},
		{
			name: "duplicate tier",
			details: []*OfferDetail{
				newTier(OfferTypeBasic, 1, 1), newTier(OfferTypeBasic, 1, 1), newTier(OfferTypePremium, 1, 1),
			},
		},
		{
			name: "foreign tier",
			details: []*OfferDetail{
				newTier(OfferTypeBasic, 1, 1), newTier("gold", 1, 1), newTier(OfferTypePremium, 1, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := newValidOffer()
			offer.Details = tt.details

			err := offer.ValidateForCreate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
			assert.Contains(t, fieldsOf(t, err), domainerrors.NonFieldKey)
		})
	}
}

func TestOffer_ValidateForCreate_FieldConstraints(t *testing.T) {
	offer := newValidOffer()
	offer.Details[0].Price = -1
	offer.Details[1].DeliveryTimeInDays = 0
	offer.Details[2].Features = nil
	offer.Details[2].Revisions = -2

	fields := fieldsOf(t, offer.ValidateForCreate())

	assert.Contains(t, fields, "details.0.price")
	assert.Contains(t, fields, "details.1.delivery_time_in_days")
	assert.Contains(t, fields, "details.2.features")
	assert.Contains(t, fields, "details.2.revisions")
}

func TestOffer_UnlimitedRevisionsAccepted(t *testing.T) {
	offer := newValidOffer()
	offer.Details[2].Revisions = UnlimitedRevisions

	assert.NoError(t, offer.ValidateForCreate())
}

func TestOffer_MinComputedFields(t *testing.T) {
	offer := newValidOffer()

	require.NotNil(t, offer.MinPrice())
	require.NotNil(t, offer.MinDeliveryTime())
	assert.Equal(t, 50, *offer.MinPrice())
	assert.Equal(t, 3, *offer.MinDeliveryTime())

	offer.Details[2].Price = 10
	offer.Details[1].DeliveryTimeInDays = 1
	assert.Equal(t, 10, *offer.MinPrice())
	assert.Equal(t, 1, *offer.MinDeliveryTime())

	empty := &Offer{}
	assert.Nil(t, empty.MinPrice())
	assert.Nil(t, empty.MinDeliveryTime())
}

func TestOffer_ApplyDetailPatches_UpdatesMatchingTier(t *testing.T) {
	offer := newValidOffer()
	premium := OfferTypePremium
	price := 250
	features := []string{"A", "B"}

	err := offer.ApplyDetailPatches([]DetailPatch{{OfferType: &premium, Price: &price, Features: &features}})

	require.NoError(t, err)
	assert.Equal(t, 250, offer.DetailByType(OfferTypePremium).Price)
	assert.Equal(t, []string{"A", "B"}, offer.DetailByType(OfferTypePremium).Features)
	assert.Equal(t, 50, offer.DetailByType(OfferTypeBasic).Price)
	assert.Len(t, offer.Details, TierCount)
}

func TestOffer_ApplyDetailPatches_ByID(t *testing.T) {
	offer := newValidOffer()
	for i, d := range offer.Details {
		d.ID = int64(10 + i)
	}
	id := int64(11)
	title := "Renamed"

	require.NoError(t, offer.ApplyDetailPatches([]DetailPatch{{ID: &id, Title: &title}}))
	assert.Equal(t, "Renamed", offer.DetailByType(OfferTypeStandard).Title)

	unknown := int64(99)
	err := offer.ApplyDetailPatches([]DetailPatch{{ID: &unknown, Title: &title}})
	assert.Contains(t, fieldsOf(t, err), "details.0.id")
}

func TestOffer_ApplyDetailPatches_RejectsWithoutMutation(t *testing.T) {
	basic := OfferTypeBasic
	gold := OfferType("gold")
	price := 999
	negative := -5

	tests := []struct {
		name    string
		patches []DetailPatch
		key     string
	}{
		{name: "unknown tier", patches: []DetailPatch{{OfferType: &gold, Price: &price}}, key: "details.0.offer_type"},
		{name: "duplicate tier", patches: []DetailPatch{{OfferType: &basic, Price: &price}, {OfferType: &basic, Price: &price}}, key: domainerrors.NonFieldKey},
		{name: "missing identity", patches: []DetailPatch{{Price: &price}}, key: "details.0.offer_type"},
		{name: "invalid field", patches: []DetailPatch{{OfferType: &basic, Price: &negative}}, key: "details.0.price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := newValidOffer()

			err := offer.ApplyDetailPatches(tt.patches)

			assert.Contains(t, fieldsOf(t, err), tt.key)
			assert.Equal(t, 50, offer.DetailByType(OfferTypeBasic).Price)
		})
	}
}

func TestOffer_ApplyDetailPatches_MissingTierOnOffer(t *testing.T) {
	offer := newValidOffer()
	offer.Details = offer.Details[:2]
	premium := OfferTypePremium
	price := 1

	err := offer.ApplyDetailPatches([]DetailPatch{{OfferType: &premium, Price: &price}})

	assert.Equal(t, []string{"tier does not exist"}, fieldsOf(t, err)["details.0.offer_type"])
}
