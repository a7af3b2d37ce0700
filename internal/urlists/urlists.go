// Package urlists stores named lists of page URLs so a report can be rerun
// without pasting the same URLs again.
package urlists

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// URLListNotFoundError represents an error when a saved list is not found
type URLListNotFoundError struct {
	Name string
}

func (e *URLListNotFoundError) Error() string {
	return fmt.Sprintf("url list not found: %s", e.Name)
}

// NewURLListNotFoundError creates a new URLListNotFoundError
func NewURLListNotFoundError(name string) *URLListNotFoundError {
	return &URLListNotFoundError{Name: name}
}

// URLList represents a saved, named set of page URLs
type URLList struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"`
	SiteURL   string    `json:"site_url"` // Property the list was saved for, informational only
	URLs      string    `gorm:"type:text" json:"-"` // Newline-joined page URLs
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entries returns the list's URLs as a slice, skipping blank lines.
func (l *URLList) Entries() []string {
	var entries []string
	for _, line := range strings.Split(l.URLs, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries
}

// SetEntries replaces the list's URLs.
func (l *URLList) SetEntries(urls []string) {
	l.URLs = strings.Join(urls, "\n")
}

// SaveList creates or updates a list by name.
func SaveList(db *gorm.DB, name, siteURL string, urls []string) (*URLList, error) {
	var list URLList
	err := db.Where("name = ?", name).First(&list).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("unexpected error querying url list: %w", err)
	}

	if err == gorm.ErrRecordNotFound {
		list = URLList{
			Name:      name,
			SiteURL:   siteURL,
			CreatedAt: time.Now().UTC(),
		}
		list.SetEntries(urls)
		if err := db.Create(&list).Error; err != nil {
			return nil, fmt.Errorf("failed to create url list: %w", err)
		}
		return &list, nil
	}

	list.SiteURL = siteURL
	list.SetEntries(urls)
	if err := db.Save(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to update url list: %w", err)
	}
	return &list, nil
}

// GetListByName retrieves a list by its unique name.
func GetListByName(db *gorm.DB, name string) (*URLList, error) {
	var list URLList
	if err := db.Where("name = ?", name).First(&list).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewURLListNotFoundError(name)
		}
		return nil, fmt.Errorf("unexpected error querying url list: %w", err)
	}
	return &list, nil
}

// GetAllLists retrieves all saved lists ordered by name.
func GetAllLists(db *gorm.DB) ([]URLList, error) {
	var lists []URLList
	if err := db.Order("name").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to get url lists: %w", err)
	}
	return lists, nil
}

// DeleteList deletes a list by name.
func DeleteList(db *gorm.DB, name string) error {
	result := db.Where("name = ?", name).Delete(&URLList{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NewURLListNotFoundError(name)
	}
	return nil
}
