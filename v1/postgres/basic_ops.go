package postgres

import "context"

// First retrieves the first record matching conditions, ordered by primary key.
// It returns gorm.ErrRecordNotFound when nothing matches.
func (p *Postgres) First(ctx context.Context, dest interface{}, conditions ...interface{}) error {
	return p.DB().WithContext(ctx).First(dest, conditions...).Error
}

// Create inserts value, which may be a pointer to a struct or to a slice of structs.
func (p *Postgres) Create(ctx context.Context, value interface{}) error {
	return p.DB().WithContext(ctx).Create(value).Error
}

// UpdateColumns sets columns on model without running hooks or touching updated_at.
func (p *Postgres) UpdateColumns(ctx context.Context, model interface{}, columnValues map[string]interface{}) (int64, error) {
	result := p.DB().WithContext(ctx).Model(model).UpdateColumns(columnValues)
	return result.RowsAffected, result.Error
}

// Delete removes records matching conditions and reports how many rows went away.
func (p *Postgres) Delete(ctx context.Context, value interface{}, conditions ...interface{}) (int64, error) {
	result := p.DB().WithContext(ctx).Delete(value, conditions...)
	return result.RowsAffected, result.Error
}
