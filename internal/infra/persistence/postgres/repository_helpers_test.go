package postgres

import (
	"testing"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"
	"coderr/internal/infra/persistence/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestOfferOrderClauses(t *testing.T) {
	tests := []struct {
		ordering repository.OfferOrdering
		want     []string
	}{
		{ordering: "", want: []string{"offers.updated_at DESC", "offers.id DESC"}},
		{ordering: repository.OfferOrderUpdatedAtDesc, want: []string{"offers.updated_at DESC", "offers.id DESC"}},
		{ordering: repository.OfferOrderUpdatedAt, want: []string{"offers.updated_at ASC", "offers.id ASC"}},
		{ordering: repository.OfferOrderMinPrice, want: []string{"MIN(offer_details.price) ASC NULLS LAST", "offers.id ASC"}},
		{ordering: repository.OfferOrderMinPriceDesc, want: []string{"MIN(offer_details.price) DESC NULLS LAST", "offers.id DESC"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.ordering), func(t *testing.T) {
			assert.Equal(t, tt.want, offerOrderClauses(tt.ordering))
		})
	}
}

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=coderr dbname=coderr sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	return db
}

func TestOfferListQueries(t *testing.T) {
	db := newDryRunDB(t)
	repo := &offerRepository{db: db}
	filter := repository.OfferFilter{
		Search:          "lo",
		MinPrice:        ptrTo(60),
		MaxDeliveryTime: ptrTo(5),
		Ordering:        repository.OfferOrderMinPrice,
	}
	filtered := repo.filteredIDs(db, filter)
	having := `GROUP BY "offers"."id" HAVING MIN(offer_details.price) >= $3 AND MIN(offer_details.delivery_time_in_days) <= $4`

	var total int64
	count := countFiltered(db, filtered, &total).Statement
	countSQL := count.SQL.String()
	assert.Contains(t, countSQL, "SELECT count(*) FROM (SELECT offers.id FROM")
	assert.Contains(t, countSQL, "LEFT JOIN offer_details ON offer_details.offer_id = offers.id")
	assert.Contains(t, countSQL, "(offers.title ILIKE $1 OR offers.description ILIKE $2)")
	assert.Contains(t, countSQL, having+") AS filtered")
	assert.Equal(t, []any{"%lo%", "%lo%", 60, 5}, count.Vars)

	var ids []int64
	pageIDs := pluckPageIDs(filtered, filter.Ordering, repository.PageRequest{Limit: 6, Offset: 6}, &ids).Statement
	pageSQL := pageIDs.SQL.String()
	assert.Contains(t, pageSQL, having+" ORDER BY MIN(offer_details.price) ASC NULLS LAST")
	assert.Contains(t, pageSQL, "LIMIT $5 OFFSET $6")
	assert.Equal(t, []any{"%lo%", "%lo%", 60, 5, 6, 6}, pageIDs.Vars)
}

func TestOfferListQueries_EscapesSearchWildcards(t *testing.T) {
	db := newDryRunDB(t)
	repo := &offerRepository{db: db}

	var total int64
	count := countFiltered(db, repo.filteredIDs(db, repository.OfferFilter{Search: "50%_off"}), &total).Statement

	assert.NotContains(t, count.SQL.String(), "HAVING")
	assert.Equal(t, []any{`%50\%\_off%`, `%50\%\_off%`}, count.Vars)
}

func ptrTo[T any](v T) *T {
	return &v
}

func TestReviewOrderClauses(t *testing.T) {
	assert.Equal(t, []string{"updated_at DESC", "id DESC"}, reviewOrderClauses(""))
	assert.Equal(t, []string{"updated_at ASC", "id ASC"}, reviewOrderClauses(repository.ReviewOrderUpdatedAt))
	assert.Equal(t, []string{"rating ASC", "id ASC"}, reviewOrderClauses(repository.ReviewOrderRating))
	assert.Equal(t, []string{"rating DESC", "id DESC"}, reviewOrderClauses(repository.ReviewOrderRatingDesc))
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\ ok`, likeEscaper.Replace(`50% off_now \ ok`))
	assert.Equal(t, "logo", likeEscaper.Replace("logo"))
}

func TestOfferDetailMappers_CopyFeatures(t *testing.T) {
	detail := &entity.OfferDetail{
		ID:                 3,
		OfferID:            1,
		Title:              "Basic",
		Revisions:          entity.UnlimitedRevisions,
		DeliveryTimeInDays: 5,
		Price:              100,
		Features:           []string{"Logo"},
		OfferType:          entity.OfferType("basic"),
	}

	m := fromOfferDetailDomain(detail)
	detail.Features[0] = "changed"
	assert.Equal(t, "Logo", m.Features[0])
	assert.Equal(t, "basic", m.OfferType)

	back := toOfferDetailDomain(m)
	m.Features[0] = "mutated"
	assert.Equal(t, "Logo", back.Features[0])
	assert.Equal(t, entity.UnlimitedRevisions, back.Revisions)
	assert.Equal(t, 100, back.Price)
}

func TestToOfferDomain(t *testing.T) {
	assert.Nil(t, toOfferDomain(nil))

	offer := toOfferDomain(&model.OfferModel{
		ID:     7,
		UserID: 2,
		Title:  "Design",
		Details: []*model.OfferDetailModel{
			{ID: 1, OfferID: 7, Price: 300, OfferType: "premium"},
			{ID: 2, OfferID: 7, Price: 100, OfferType: "basic"},
		},
	})
	require.NotNil(t, offer)
	require.Len(t, offer.Details, 2)
	require.NotNil(t, offer.MinPrice())
	assert.Equal(t, 100, *offer.MinPrice())
	assert.Nil(t, offer.Owner)
}

func TestMapOfferWriteError(t *testing.T) {
	dup := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintOfferType}
	assert.ErrorIs(t, mapOfferWriteError(dup, "create"), repository.ErrDuplicateOfferType)

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	assert.ErrorIs(t, mapOfferWriteError(fk, "create"), repository.ErrUserNotFound)
}

func TestMapReviewWriteError(t *testing.T) {
	dup := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintReviewerPerBiz}
	assert.ErrorIs(t, mapReviewWriteError(dup, "create"), repository.ErrDuplicateReview)
}
