package domain

import "strings"

type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

func (c Category) RecordID() ID { return c.ID }

func (c Category) WithID(id ID) Category {
	c.ID = id
	return c
}

func (c Category) SearchFields() []string { return []string{c.Name} }

// CategoryLabel is empty: categories are not filtered by category.
func (c Category) CategoryLabel() string { return "" }

func (c Category) OwnerRef() Owner { return Owner{} }

// Validate checks the name and that no other category in existing uses it,
// ignoring case and surrounding spaces.
func (c Category) Validate(existing []Category) error {
	verr := NewValidationError()
	name := strings.TrimSpace(c.Name)
	if name == "" {
		verr.Add("name", "category name must not be empty")
		return verr
	}
	for _, other := range existing {
		if SameID(other.ID, c.ID) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(other.Name), name) {
			verr.Add("name", "category name already exists")
			break
		}
	}
	return verr.Err()
}
