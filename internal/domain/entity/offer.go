package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	domainerrors "coderr/internal/domain/errors"
)

// OfferType identifies one of the three pricing tiers of an offer.
type OfferType string

const (
	OfferTypeBasic    OfferType = "basic"
	OfferTypeStandard OfferType = "standard"
	OfferTypePremium  OfferType = "premium"
)

// UnlimitedRevisions is stored in Revisions when a tier allows any number of revisions.
const UnlimitedRevisions = -1

// TitleMaxLength bounds offer and tier titles.
const TitleMaxLength = 100

// TierCount is the fixed number of tiers per offer.
const TierCount = 3

// OfferTypes returns the tiers every offer must carry, in display order.
func OfferTypes() []OfferType {
	return []OfferType{OfferTypeBasic, OfferTypeStandard, OfferTypePremium}
}

// IsValid checks if the OfferType is a valid value.
func (t OfferType) IsValid() bool {
	switch t {
	case OfferTypeBasic, OfferTypeStandard, OfferTypePremium:
		return true
	default:
		return false
	}
}

// Offer is a business user's listing with exactly three priced tiers.
type Offer struct {
	ID          int64
	UserID      int64   // Owning business identity.
	Title       string
	Description string
	Image       *string // Blob key, nil when no image is attached.
	Details     []*OfferDetail
	Owner       *User // Loaded for list views only.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OfferDetail is a single tier of an offer.
type OfferDetail struct {
	ID                 int64
	OfferID            int64
	Title              string
	Revisions          int
	DeliveryTimeInDays int
	Price              int
	Features           []string
	OfferType          OfferType
	Offer              *Offer // Parent, loaded when a detail is read on its own.
}

// MinPrice returns the lowest tier price, nil when no tier is loaded.
func (o *Offer) MinPrice() *int {
	var minPrice *int
	for _, d := range o.Details {
		if minPrice == nil || d.Price < *minPrice {
			p := d.Price
			minPrice = &p
		}
	}

	return minPrice
}

// MinDeliveryTime returns the fastest tier delivery in days, nil when no tier is loaded.
func (o *Offer) MinDeliveryTime() *int {
	var minDays *int
	for _, d := range o.Details {
		if minDays == nil || d.DeliveryTimeInDays < *minDays {
			days := d.DeliveryTimeInDays
			minDays = &days
		}
	}

	return minDays
}

// DetailByType finds the tier with the given type.
func (o *Offer) DetailByType(t OfferType) *OfferDetail {
	for _, d := range o.Details {
		if d.OfferType == t {
			return d
		}
	}

	return nil
}

// DetailByID finds the tier with the given id.
func (o *Offer) DetailByID(id int64) *OfferDetail {
	for _, d := range o.Details {
		if d.ID == id {
			return d
		}
	}

	return nil
}

// Validate checks the scalar offer fields.
func (o *Offer) Validate() domainerrors.FieldErrors {
	errs := domainerrors.FieldErrors{}
	validateTitle(errs, "title", o.Title)
	if strings.TrimSpace(o.Description) == "" {
		errs.Add("description", domainerrors.MsgRequired)
	}

	return errs
}

// ValidateForCreate checks the offer and its full tier set.
func (o *Offer) ValidateForCreate() error {
	errs := o.Validate()

	if len(o.Details) != TierCount {
		errs.Add(domainerrors.NonFieldKey, "Exactly 3 details must be provided.")

		return errs.Err()
	}

	seen := make(map[OfferType]bool, TierCount)
	for i, d := range o.Details {
		errs.Merge(detailKey(i), d.Validate())
		if d.OfferType.IsValid() {
			seen[d.OfferType] = true
		}
	}

	if len(seen) != TierCount {
		errs.Add(domainerrors.NonFieldKey, "Each offer_type (basic, standard, premium) must appear exactly once.")
	}

	return errs.Err()
}

// Validate checks the tier field constraints.
func (d *OfferDetail) Validate() domainerrors.FieldErrors {
	errs := domainerrors.FieldErrors{}
	validateTitle(errs, "title", d.Title)
	validateRevisions(errs, d.Revisions)
	validateDeliveryTime(errs, d.DeliveryTimeInDays)
	validatePrice(errs, d.Price)
	validateFeatures(errs, d.Features)
	if !d.OfferType.IsValid() {
		errs.Add("offer_type", fmt.Sprintf("%q is not a valid choice.", d.OfferType))
	}

	return errs
}

// DetailPatch carries the tier fields of a partial offer update.
// A patch addresses its tier by ID or by OfferType.
type DetailPatch struct {
	ID                 *int64
	OfferType          *OfferType
	Title              *string
	Revisions          *int
	DeliveryTimeInDays *int
	Price              *int
	Features           *[]string
}

// ApplyDetailPatches updates existing tiers in place. Nothing is modified when any patch is invalid.
func (o *Offer) ApplyDetailPatches(patches []DetailPatch) error {
	errs := domainerrors.FieldErrors{}
	targets := make([]*OfferDetail, len(patches))
	claimed := make(map[OfferType]bool, len(patches))

	for i, p := range patches {
		key := detailKey(i)

		target, fieldErrs := o.resolvePatchTarget(p)
		if !fieldErrs.Empty() {
			errs.Merge(key, fieldErrs)

			continue
		}

		if claimed[target.OfferType] {
			errs.Add(domainerrors.NonFieldKey, fmt.Sprintf("offer_type %q is referenced more than once.", target.OfferType))

			continue
		}
		claimed[target.OfferType] = true
		targets[i] = target

		errs.Merge(key, p.validate())
	}

	if err := errs.Err(); err != nil {
		return err
	}

	for i, p := range patches {
		p.apply(targets[i])
	}

	return nil
}

func (o *Offer) resolvePatchTarget(p DetailPatch) (*OfferDetail, domainerrors.FieldErrors) {
	errs := domainerrors.FieldErrors{}

	var target *OfferDetail
	switch {
	case p.ID != nil:
		target = o.DetailByID(*p.ID)
		if target == nil {
			errs.Add("id", "tier does not exist")

			return nil, errs
		}
		if p.OfferType != nil && *p.OfferType != target.OfferType {
			errs.Add("offer_type", "offer_type does not match the referenced tier.")

			return nil, errs
		}
	case p.OfferType != nil:
		if !p.OfferType.IsValid() {
			errs.Add("offer_type", fmt.Sprintf("%q is not a valid choice.", *p.OfferType))

			return nil, errs
		}
		target = o.DetailByType(*p.OfferType)
		if target == nil {
			errs.Add("offer_type", "tier does not exist")

			return nil, errs
		}
	default:
		errs.Add("offer_type", domainerrors.MsgRequired)

		return nil, errs
	}

	return target, errs
}

func (p DetailPatch) validate() domainerrors.FieldErrors {
	errs := domainerrors.FieldErrors{}
	if p.Title != nil {
		validateTitle(errs, "title", *p.Title)
	}
	if p.Revisions != nil {
		validateRevisions(errs, *p.Revisions)
	}
	if p.DeliveryTimeInDays != nil {
		validateDeliveryTime(errs, *p.DeliveryTimeInDays)
	}
	if p.Price != nil {
		validatePrice(errs, *p.Price)
	}
	if p.Features != nil {
		validateFeatures(errs, *p.Features)
	}

	return errs
}

func (p DetailPatch) apply(d *OfferDetail) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Revisions != nil {
		d.Revisions = *p.Revisions
	}
	if p.DeliveryTimeInDays != nil {
		d.DeliveryTimeInDays = *p.DeliveryTimeInDays
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.Features != nil {
		d.Features = append([]string(nil), (*p.Features)...)
	}
}

func detailKey(i int) string {
	return "details." + strconv.Itoa(i)
}

func validateTitle(errs domainerrors.FieldErrors, field, title string) {
	switch {
	case strings.TrimSpace(title) == "":
		errs.Add(field, domainerrors.MsgRequired)
	case utf8.RuneCountInString(title) > TitleMaxLength:
		errs.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", TitleMaxLength))
	}
}

func validateRevisions(errs domainerrors.FieldErrors, revisions int) {
	if revisions < UnlimitedRevisions {
		errs.Add("revisions", "Ensure this value is greater than or equal to 0, or -1 for unlimited.")
	}
}

func validateDeliveryTime(errs domainerrors.FieldErrors, days int) {
	if days < 1 {
		errs.Add("delivery_time_in_days", "Ensure this value is greater than or equal to 1.")
	}
}

func validatePrice(errs domainerrors.FieldErrors, price int) {
	if price < 0 {
		errs.Add("price", "Ensure this value is greater than or equal to 0.")
	}
}

func validateFeatures(errs domainerrors.FieldErrors, features []string) {
	if len(features) == 0 {
		errs.Add("features", "This list may not be empty.")

		return
	}
	for _, f := range features {
		if strings.TrimSpace(f) == "" {
			errs.Add("features", "This field may not be blank.")

			return
		}
	}
}
