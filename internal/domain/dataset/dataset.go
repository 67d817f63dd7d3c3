// Package dataset holds the dataset property holder.
package dataset

// Dataset is a platform dataset. Name, description and creation time are
// optional and may be set or cleared independently.
type Dataset struct {
	id          int
	name        *string
	description *string
	createdAt   *string
}

// New creates a dataset with only its ID known.
func New(id int) *Dataset { return &Dataset{id: id} }

// ID returns the dataset identifier.
func (d *Dataset) ID() int { return d.id }

// Name returns the name and whether it is set.
func (d *Dataset) Name() (string, bool) { return deref(d.name) }

// SetName sets the name.
func (d *Dataset) SetName(v string) { d.name = &v }

// ClearName unsets the name.
func (d *Dataset) ClearName() { d.name = nil }

// Description returns the description and whether it is set.
func (d *Dataset) Description() (string, bool) { return deref(d.description) }

// SetDescription sets the description.
func (d *Dataset) SetDescription(v string) { d.description = &v }

// ClearDescription unsets the description.
func (d *Dataset) ClearDescription() { d.description = nil }

// CreatedAt returns the creation timestamp as reported by the platform.
func (d *Dataset) CreatedAt() (string, bool) { return deref(d.createdAt) }

// SetCreatedAt sets the creation timestamp.
func (d *Dataset) SetCreatedAt(v string) { d.createdAt = &v }

// ClearCreatedAt unsets the creation timestamp.
func (d *Dataset) ClearCreatedAt() { d.createdAt = nil }

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}
