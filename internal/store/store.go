// Package store is the record store the services write through. It offers the
// document-style contract the app was built around (create, get, get-all,
// get-where-equals, get-where-range, update-by-id) on top of gorm, plus
// transactions so multi-record writes commit together.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for aggregate queries the contract does
// not cover.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn against a store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Order is a sort key. Field may be a column or a struct field name.
type Order struct {
	Field string
	Desc  bool
}

func Asc(field string) Order  { return Order{Field: field} }
func Desc(field string) Order { return Order{Field: field, Desc: true} }

func Create[T any](ctx context.Context, s *Store, rec *T) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("store: create %s: %w", tableOf[T](s), err)
	}
	return nil
}

func Get[T any](ctx context.Context, s *Store, id string) (*T, error) {
	var rec T
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s %s: %w", tableOf[T](s), id, err)
	}
	return &rec, nil
}

func All[T any](ctx context.Context, s *Store, orders ...Order) ([]T, error) {
	q, err := ordered[T](s.db.WithContext(ctx).Model(new(T)), s, orders)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list %s: %w", tableOf[T](s), err)
	}
	return rows, nil
}

func WhereEquals[T any](ctx context.Context, s *Store, field string, value any, orders ...Order) ([]T, error) {
	return Find[T](ctx, s, map[string]any{field: value}, orders...)
}

// Find matches every field in eq.
func Find[T any](ctx context.Context, s *Store, eq map[string]any, orders ...Order) ([]T, error) {
	q := s.db.WithContext(ctx).Model(new(T))
	for field, value := range eq {
		col, err := column[T](s, field)
		if err != nil {
			return nil, err
		}
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: value})
	}
	q, err := ordered[T](q, s, orders)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: find %s: %w", tableOf[T](s), err)
	}
	return rows, nil
}

// WhereRange returns rows with start <= field <= end. Empty bounds are open.
func WhereRange[T any](ctx context.Context, s *Store, field, start, end string, orders ...Order) ([]T, error) {
	col, err := column[T](s, field)
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(new(T))
	if start != "" {
		q = q.Where(clause.Gte{Column: clause.Column{Name: col}, Value: start})
	}
	if end != "" {
		q = q.Where(clause.Lte{Column: clause.Column{Name: col}, Value: end})
	}
	q, err = ordered[T](q, s, orders)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: range %s: %w", tableOf[T](s), err)
	}
	return rows, nil
}

// Update writes fields to the record with id. A nil value clears the column.
func Update[T any](ctx context.Context, s *Store, id string, fields map[string]any) error {
	ok, err := UpdateIf[T](ctx, s, id, nil, fields)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// UpdateIf writes fields only while every column in cond still holds the given
// value. It reports whether the row was updated.
func UpdateIf[T any](ctx context.Context, s *Store, id string, cond, fields map[string]any) (bool, error) {
	values := make(map[string]any, len(fields))
	for field, v := range fields {
		col, err := column[T](s, field)
		if err != nil {
			return false, err
		}
		values[col] = v
	}

	q := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id)
	for field, v := range cond {
		col, err := column[T](s, field)
		if err != nil {
			return false, err
		}
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: v})
	}

	res := q.Updates(values)
	if res.Error != nil {
		return false, fmt.Errorf("store: update %s %s: %w", tableOf[T](s), id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func ordered[T any](q *gorm.DB, s *Store, orders []Order) (*gorm.DB, error) {
	for _, o := range orders {
		col, err := column[T](s, o.Field)
		if err != nil {
			return nil, err
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: o.Desc})
	}
	return q, nil
}

// column resolves a struct field or column name against the model schema, so
// only real columns reach the query.
func column[T any](s *Store, field string) (string, error) {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(new(T)); err != nil {
		return "", fmt.Errorf("store: parse model: %w", err)
	}
	f := stmt.Schema.LookUpField(field)
	if f == nil || f.DBName == "" {
		return "", fmt.Errorf("store: unknown field %q on %s", field, stmt.Schema.Table)
	}
	return f.DBName, nil
}

func tableOf[T any](s *Store) string {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(new(T)); err != nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return stmt.Schema.Table
}
