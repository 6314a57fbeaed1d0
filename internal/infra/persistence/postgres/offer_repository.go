package postgres

import (
	"context"
	"strings"
	"time"

	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/repository"
	"coderr/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	minPriceExpr    = "MIN(offer_details.price)"
	minDeliveryExpr = "MIN(offer_details.delivery_time_in_days)"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// offerRepository implements repository.OfferRepository using GORM.
type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository is the constructor for offerRepository.
func NewOfferRepository(db *gorm.DB) repository.OfferRepository {
	return &offerRepository{db: db}
}

func detailsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("offer_details.id ASC")
}

// Create inserts the offer and its tiers in one statement batch.
func (repo *offerRepository) Create(ctx context.Context, offer *entity.Offer) error {
	offerM := fromOfferDomain(offer)

	if err := repo.db.WithContext(ctx).Create(offerM).Error; err != nil {
		return mapOfferWriteError(err, "failed to create offer")
	}

	offer.ID = offerM.ID
	offer.CreatedAt = offerM.CreatedAt
	offer.UpdatedAt = offerM.UpdatedAt
	for i, d := range offerM.Details {
		offer.Details[i].ID = d.ID
		offer.Details[i].OfferID = offerM.ID
	}

	return nil
}

// FindByID retrieves an offer with its tiers.
func (repo *offerRepository) FindByID(ctx context.Context, id int64) (*entity.Offer, error) {
	var offerM model.OfferModel
	err := repo.db.WithContext(ctx).
		Preload("Details", detailsInOrder).
		Where("id = ?", id).
		First(&offerM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOfferNotFound
		}

		return nil, errors.Wrap(err, "failed to find offer by id")
	}

	return toOfferDomain(&offerM), nil
}

// Update writes the offer scalars and every loaded tier, then advances updated_at.
func (repo *offerRepository) Update(ctx context.Context, offer *entity.Offer) error {
	db := repo.db.WithContext(ctx)
	now := time.Now()

	result := db.Model(&model.OfferModel{}).
		Where("id = ?", offer.ID).
		Updates(map[string]any{
			"title":       offer.Title,
			"description": offer.Description,
			"image":       offer.Image,
			"updated_at":  now,
		})
	if result.Error != nil {
		return mapOfferWriteError(result.Error, "failed to update offer")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOfferNotFound
	}

	for _, d := range offer.Details {
		detailM := fromOfferDetailDomain(d)
		err := db.Model(&model.OfferDetailModel{}).
			Where("id = ? AND offer_id = ?", d.ID, offer.ID).
			Updates(map[string]any{
				"title":                 detailM.Title,
				"revisions":             detailM.Revisions,
				"delivery_time_in_days": detailM.DeliveryTimeInDays,
				"price":                 detailM.Price,
				"features":              detailM.Features,
			}).Error
		if err != nil {
			return mapOfferWriteError(err, "failed to update offer detail")
		}
	}

	offer.UpdatedAt = now

	return nil
}

// Delete removes the offer; tiers and orders cascade in the database.
func (repo *offerRepository) Delete(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Delete(&model.OfferModel{}, id)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete offer")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOfferNotFound
	}

	return nil
}

// List filters on the aggregated tier minima, pages the matching ids, then loads those offers.
func (repo *offerRepository) List(ctx context.Context, filter repository.OfferFilter, page repository.PageRequest) ([]*entity.Offer, int64, error) {
	db := repo.db.WithContext(ctx)
	filtered := repo.filteredIDs(db, filter)

	var total int64
	if err := countFiltered(db, filtered, &total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count offers")
	}
	if total == 0 {
		return []*entity.Offer{}, 0, nil
	}

	var ids []int64
	if err := pluckPageIDs(filtered, filter.Ordering, page, &ids).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list offer ids")
	}
	if len(ids) == 0 {
		return []*entity.Offer{}, total, nil
	}

	var offersM []*model.OfferModel
	err := db.
		Preload("Details", detailsInOrder).
		Preload("User").
		Where("id IN ?", ids).
		Find(&offersM).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to load offers")
	}

	byID := make(map[int64]*model.OfferModel, len(offersM))
	for _, o := range offersM {
		byID[o.ID] = o
	}

	offers := make([]*entity.Offer, 0, len(ids))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			offers = append(offers, toOfferDomain(o))
		}
	}

	return offers, total, nil
}

func (repo *offerRepository) filteredIDs(db *gorm.DB, filter repository.OfferFilter) *gorm.DB {
	query := db.Model(&model.OfferModel{}).
		Select("offers.id").
		Joins("LEFT JOIN offer_details ON offer_details.offer_id = offers.id").
		Group("offers.id")

	if filter.CreatorID != nil {
		query = query.Where("offers.user_id = ?", *filter.CreatorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		query = query.Where("(offers.title ILIKE ? OR offers.description ILIKE ?)", pattern, pattern)
	}
	if filter.MinPrice != nil {
		query = query.Having(minPriceExpr+" >= ?", *filter.MinPrice)
	}
	if filter.MaxDeliveryTime != nil {
		query = query.Having(minDeliveryExpr+" <= ?", *filter.MaxDeliveryTime)
	}

	return query
}

func countFiltered(db, filtered *gorm.DB, total *int64) *gorm.DB {
	return db.Table("(?) AS filtered", filtered).Count(total)
}

func pluckPageIDs(filtered *gorm.DB, ordering repository.OfferOrdering, page repository.PageRequest, ids *[]int64) *gorm.DB {
	ordered := filtered.Session(&gorm.Session{})
	for _, o := range offerOrderClauses(ordering) {
		ordered = ordered.Order(o)
	}

	return paginate(ordered, page).Pluck("offers.id", ids)
}

func offerOrderClauses(ordering repository.OfferOrdering) []string {
	switch ordering {
	case repository.OfferOrderUpdatedAt:
		return []string{"offers.updated_at ASC", "offers.id ASC"}
	case repository.OfferOrderMinPrice:
		return []string{minPriceExpr + " ASC NULLS LAST", "offers.id ASC"}
	case repository.OfferOrderMinPriceDesc:
		return []string{minPriceExpr + " DESC NULLS LAST", "offers.id DESC"}
	default:
		return []string{"offers.updated_at DESC", "offers.id DESC"}
	}
}

// FindDetailByID retrieves a tier with its parent offer.
func (repo *offerRepository) FindDetailByID(ctx context.Context, id int64) (*entity.OfferDetail, error) {
	var detailM model.OfferDetailModel
	err := repo.db.WithContext(ctx).
		Preload("Offer").
		Where("id = ?", id).
		First(&detailM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOfferDetailNotFound
		}

		return nil, errors.Wrap(err, "failed to find offer detail by id")
	}

	detail := toOfferDetailDomain(&detailM)
	if detailM.Offer != nil {
		detail.Offer = toOfferDomain(detailM.Offer)
	}

	return detail, nil
}

// Count counts all offers.
func (repo *offerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.OfferModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count offers")
	}

	return count, nil
}

func mapOfferWriteError(err error, message string) error {
	if isUniqueConstraintViolation(err) {
		if c := violatedConstraint(err); c == "" || c == constraintOfferType {
			return repository.ErrDuplicateOfferType
		}
	}
	if isForeignKeyConstraintViolation(err) {
		return repository.ErrUserNotFound
	}
	if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
		return domainerrors.ErrValidationFailed.WrapMessage(message)
	}

	return domainerrors.NewDatabaseExecuteError(err, message)
}

// --- Mapper Functions ---

func toOfferDomain(data *model.OfferModel) *entity.Offer {
	if data == nil {
		return nil
	}

	details := make([]*entity.OfferDetail, 0, len(data.Details))
	for _, d := range data.Details {
		details = append(details, toOfferDetailDomain(d))
	}

	return &entity.Offer{
		ID:          data.ID,
		UserID:      data.UserID,
		Title:       data.Title,
		Description: data.Description,
		Image:       data.Image,
		Details:     details,
		Owner:       toUserDomain(data.User),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromOfferDomain(data *entity.Offer) *model.OfferModel {
	details := make([]*model.OfferDetailModel, 0, len(data.Details))
	for _, d := range data.Details {
		details = append(details, fromOfferDetailDomain(d))
	}

	return &model.OfferModel{
		ID:          data.ID,
		UserID:      data.UserID,
		Title:       data.Title,
		Description: data.Description,
		Image:       data.Image,
		Details:     details,
	}
}

func toOfferDetailDomain(data *model.OfferDetailModel) *entity.OfferDetail {
	features := make([]string, len(data.Features))
	copy(features, data.Features)

	return &entity.OfferDetail{
		ID:                 data.ID,
		OfferID:            data.OfferID,
		Title:              data.Title,
		Revisions:          data.Revisions,
		DeliveryTimeInDays: data.DeliveryTimeInDays,
		Price:              data.Price,
		Features:           features,
		OfferType:          entity.OfferType(data.OfferType),
	}
}

func fromOfferDetailDomain(data *entity.OfferDetail) *model.OfferDetailModel {
	return &model.OfferDetailModel{
		ID:                 data.ID,
		OfferID:            data.OfferID,
		Title:              data.Title,
		Revisions:          data.Revisions,
		DeliveryTimeInDays: data.DeliveryTimeInDays,
		Price:              data.Price,
		Features:           append([]string(nil), data.Features...),
		OfferType:          string(data.OfferType),
	}
}
