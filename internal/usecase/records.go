package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"sake-recommendation/internal/domain"
	"sake-recommendation/internal/transform"
	"sake-recommendation/internal/validation"
)

var (
	newUUID = func() string { return uuid.NewString() }
	nowFunc = time.Now
)

// RecordStore is the drinking-records persistence consumed by RecordService.
type RecordStore interface {
	CreateRecord(ctx context.Context, rec domain.StoredRecord) (domain.StoredRecord, error)
	GetRecordsByUserID(ctx context.Context, userID string) ([]domain.StoredRecord, error)
	GetRecord(ctx context.Context, userID, recordID string) (*domain.StoredRecord, error)
	QueryBySakeName(ctx context.Context, userID, sakeName string, r *domain.DateRange) ([]domain.StoredRecord, error)
	QueryByRating(ctx context.Context, userID string, rating domain.Rating, r *domain.DateRange) ([]domain.StoredRecord, error)
	UpdateRecord(ctx context.Context, userID, recordID string, patch domain.StoredPatch) (domain.StoredRecord, error)
	DeleteRecord(ctx context.Context, userID, recordID string) error
}

type RecordService struct {
	store RecordStore
}

func NewRecordService(store RecordStore) (*RecordService, error) {
	if store == nil {
		return nil, errors.New("usecase: record store must not be nil")
	}
	return &RecordService{store: store}, nil
}

// Create validates body and stores a new record owned by userID.
func (s *RecordService) Create(ctx context.Context, userID string, body any) (domain.DrinkingRecord, error) {
	if userID == "" {
		return domain.DrinkingRecord{}, newError(ErrorUnauthorized, "missing_user", MsgUnauthorized, nil)
	}
	in, err := validation.CreateRecord(body)
	if err != nil {
		return domain.DrinkingRecord{}, validationError(err)
	}

	rec := transform.NewStored(in, userID, newUUID(), nowFunc())
	stored, err := s.store.CreateRecord(ctx, rec)
	if err != nil {
		return domain.DrinkingRecord{}, newError(ErrorInternal, "dynamodb_create_error", msgCreateFailed, err)
	}
	return transform.ToAPI(stored), nil
}

// List returns the caller's records newest first. Brand and rating filters
// go through the secondary indexes, which the store scopes to userID.
func (s *RecordService) List(ctx context.Context, userID string, q validation.ListQuery) ([]domain.DrinkingRecord, error) {
	if userID == "" {
		return nil, newError(ErrorUnauthorized, "missing_user", MsgUnauthorized, nil)
	}
	f, err := validation.ListFilter(q)
	if err != nil {
		return nil, validationError(err)
	}

	var records []domain.StoredRecord
	switch {
	case f.Brand != "":
		records, err = s.store.QueryBySakeName(ctx, userID, f.Brand, f.Range)
	case f.Rating != "":
		records, err = s.store.QueryByRating(ctx, userID, f.Rating, f.Range)
	default:
		records, err = s.store.GetRecordsByUserID(ctx, userID)
	}
	if err != nil {
		return nil, newError(ErrorInternal, "dynamodb_query_error", msgListFailed, err)
	}

	if f.Brand != "" && f.Rating != "" {
		records = filterRecords(records, func(r domain.StoredRecord) bool {
			return r.Rating == f.Rating
		})
	}
	if f.Brand != "" || f.Rating != "" {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt > records[j].CreatedAt
		})
	}
	if f.Query != "" {
		records = filterRecords(records, func(r domain.StoredRecord) bool {
			return strings.Contains(r.SakeName, f.Query) || strings.Contains(r.Impression, f.Query)
		})
	}
	return transform.ToAPIList(records), nil
}

func filterRecords(records []domain.StoredRecord, keep func(domain.StoredRecord) bool) []domain.StoredRecord {
	out := make([]domain.StoredRecord, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Update applies the fields present in body to an existing record. A missing
// record is reported before the body is validated.
func (s *RecordService) Update(ctx context.Context, userID, recordID string, body any) (domain.DrinkingRecord, error) {
	if userID == "" {
		return domain.DrinkingRecord{}, newError(ErrorUnauthorized, "missing_user", MsgUnauthorized, nil)
	}
	existing, err := s.store.GetRecord(ctx, userID, recordID)
	if err != nil {
		return domain.DrinkingRecord{}, newError(ErrorInternal, "dynamodb_get_error", msgUpdateFailed, err)
	}
	if existing == nil {
		return domain.DrinkingRecord{}, newError(ErrorNotFound, "record_not_found", msgRecordNotFound, nil)
	}

	patch, err := validation.UpdateRecord(body)
	if err != nil {
		return domain.DrinkingRecord{}, validationError(err)
	}

	stored, err := s.store.UpdateRecord(ctx, userID, recordID, transform.ToStored(patch, userID, recordID, nowFunc()))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRecordNotFound):
		return domain.DrinkingRecord{}, newError(ErrorNotFound, "record_not_found", msgRecordNotFound, err)
	case errors.Is(err, domain.ErrNoAttributesToUpdate):
		return domain.DrinkingRecord{}, newError(ErrorValidation, "no_attributes", msgNoAttributesToSet, err)
	default:
		return domain.DrinkingRecord{}, newError(ErrorInternal, "dynamodb_update_error", msgUpdateFailed, err)
	}
	return transform.ToAPI(stored), nil
}

// Delete removes an existing record.
func (s *RecordService) Delete(ctx context.Context, userID, recordID string) error {
	if userID == "" {
		return newError(ErrorUnauthorized, "missing_user", MsgUnauthorized, nil)
	}
	existing, err := s.store.GetRecord(ctx, userID, recordID)
	if err != nil {
		return newError(ErrorInternal, "dynamodb_get_error", msgDeleteFailed, err)
	}
	if existing == nil {
		return newError(ErrorNotFound, "record_not_found", msgRecordNotFound, nil)
	}
	if err := s.store.DeleteRecord(ctx, userID, recordID); err != nil {
		return newError(ErrorInternal, "dynamodb_delete_error", msgDeleteFailed, err)
	}
	return nil
}

func validationError(err error) *Error {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return newError(ErrorValidation, "invalid_"+vErr.Field, vErr.Message, err)
	}
	return newError(ErrorValidation, "invalid_request", MsgValidation, err)
}
