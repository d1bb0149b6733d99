package repository

import (
	"context"
	"fmt"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sortable report columns and their ORDER BY expressions.
const (
	SortColumnTimeCreated  = "timecreated"
	SortColumnAffectedUser = "affected_user"
)

const failureFields = "lssl.id, lssl.relateduserid, lssl.other, lssl.timecreated, u.firstname, u.lastname, u.deleted"

type FailureRepository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, sort domain.Sort, offset, limit int) ([]domain.FailureRecord, error)
	Stream(ctx context.Context, sort domain.Sort, fn func(domain.FailureRecord) error) error
}

type GormFailureRepo struct {
	db        *gorm.DB
	logTable  string
	userTable string
}

func NewGormFailureRepo(db *gorm.DB) *GormFailureRepo {
	return &GormFailureRepo{
		db:        db,
		logTable:  quotedTableName(db, logTable),
		userTable: quotedTableName(db, userTable),
	}
}

// scope is shared by the count and data queries so both see the same rows.
func (r *GormFailureRepo) scope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table(r.logTable+" AS lssl").
		Joins("JOIN "+r.userTable+" u ON u.id = lssl.relateduserid").
		Where("lssl.eventname = ?", domain.EventEmailFailed)
}

func (r *GormFailureRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.scope(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count failed emails: %w", err)
	}
	return total, nil
}

func (r *GormFailureRepo) List(ctx context.Context, sort domain.Sort, offset, limit int) ([]domain.FailureRecord, error) {
	query, err := r.ordered(ctx, sort)
	if err != nil {
		return nil, err
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []failureRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list failed emails: %w", err)
	}

	records := make([]domain.FailureRecord, 0, len(rows))
	for i := range rows {
		records = append(records, failureRowToDomain(&rows[i]))
	}
	return records, nil
}

// Stream walks the full result set one row at a time.
func (r *GormFailureRepo) Stream(ctx context.Context, sort domain.Sort, fn func(domain.FailureRecord) error) error {
	query, err := r.ordered(ctx, sort)
	if err != nil {
		return err
	}

	rows, err := query.Rows()
	if err != nil {
		return fmt.Errorf("failed to query failed emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row failureRow
		if err := r.db.ScanRows(rows, &row); err != nil {
			return fmt.Errorf("failed to scan failed email row: %w", err)
		}
		if err := fn(failureRowToDomain(&row)); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate failed emails: %w", err)
	}
	return nil
}

// ValidateSort checks a sort against the columns the failure queries can
// order by. Empty column and direction fall back to timecreated DESC.
func ValidateSort(sort domain.Sort) error {
	if sort.Direction != "" && !sort.Direction.IsValid() {
		return fmt.Errorf("%w: invalid sort direction %q", domain.ErrValidation, sort.Direction)
	}
	switch sort.Column {
	case "", SortColumnTimeCreated, SortColumnAffectedUser:
		return nil
	default:
		return fmt.Errorf("%w: column %q is not sortable", domain.ErrValidation, sort.Column)
	}
}

func (r *GormFailureRepo) ordered(ctx context.Context, sort domain.Sort) (*gorm.DB, error) {
	if err := ValidateSort(sort); err != nil {
		return nil, err
	}
	desc := sort.Direction != domain.SortAsc

	query := r.scope(ctx).Select(failureFields)
	switch sort.Column {
	case "", SortColumnTimeCreated:
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Table: "lssl", Name: "timecreated"}, Desc: desc})
	case SortColumnAffectedUser:
		query = query.
			Order(clause.OrderByColumn{Column: clause.Column{Table: "u", Name: "firstname"}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Table: "u", Name: "lastname"}, Desc: desc})
	default:
		return nil, fmt.Errorf("%w: column %q is not sortable", domain.ErrValidation, sort.Column)
	}

	// Tie-break on id so page boundaries are stable.
	return query.Order(clause.OrderByColumn{Column: clause.Column{Table: "lssl", Name: "id"}, Desc: desc}), nil
}

func quotedTableName(db *gorm.DB, name string) string {
	return db.Statement.Quote(db.NamingStrategy.TableName(name))
}
