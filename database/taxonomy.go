package database

import "context"

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (s *Store) CategoryByID(ctx context.Context, id string) (*Category, error) {
	var c Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, name string) (*Category, error) {
	c := &Category{Name: name}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *Store) CreateTag(ctx context.Context, name string) (*Tag, error) {
	t := &Tag{Name: name}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}
