// Package resource implements the descriptor-driven entity/comment engine.
// One engine serves every resource kind; per-kind behavior lives entirely in
// static EntityDescriptor configuration, so authorization and validation
// cannot drift between kinds.
package resource

import (
	"fmt"
	"strings"
)

// Capability is the access level required for an operation.
type Capability int

const (
	// CapAuthenticated admits any logged-in principal.
	CapAuthenticated Capability = iota
	// CapOwner admits the record's owner or an admin.
	CapOwner
	// CapAdmin admits admins only.
	CapAdmin
)

// FieldKind selects the sanitization applied to a payload field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldEmail
	FieldPositiveInt
	FieldPassword
)

// Field describes one payload field of an entity kind.
type Field struct {
	Name       string    // payload key; also the column name unless Column is set
	Column     string    // storage column override
	Kind       FieldKind // sanitization rule
	Required   bool      // enforced on create and update
	CreateOnly bool      // excluded from the full-field update overwrite
	Hidden     bool      // never selected into responses
	Default    string    // applied when a create payload omits the field
	Fixed      bool      // always written as Default; payload input is ignored
}

// ColumnName returns the storage column backing the field.
func (f Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// WriteRules maps each mutating operation to its required capability.
type WriteRules struct {
	Create Capability
	Update Capability
	Delete Capability
}

// AuthorJoin configures a display-name join against the users table.
type AuthorJoin struct {
	Table string // joined table, e.g. "users"
	FK    string // column on the entity table referencing Table's id
}

// CommentDescriptor configures the comment sub-resource of an entity kind.
type CommentDescriptor struct {
	Table        string // comment table
	ParentColumn string // column referencing the parent record
}

// EntityDescriptor is static, compile-time configuration for one CRUD-able
// resource kind. Field names referenced anywhere in a descriptor come from
// this allow-list and are never taken from untrusted input.
type EntityDescriptor struct {
	Kind         string // URL path segment and log label
	Table        string
	Fields       []Field
	ReadCap      Capability // capability for list/get; CapAuthenticated for most kinds
	Write        WriteRules
	OwnerColumn  string // stamped with the creating principal; "" when untracked
	Scope        string // static WHERE fragment, e.g. "role = 'student'"
	DefaultSort  string
	DefaultOrder string // "ASC" or "DESC"
	AllowedSort  []string
	SearchFields []string
	Author       *AuthorJoin
	Comments     *CommentDescriptor
}

// FieldByName looks up a field descriptor by payload key.
func (d *EntityDescriptor) FieldByName(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredFields lists the payload keys enforced by validateRequired.
func (d *EntityDescriptor) RequiredFields() []string {
	var req []string
	for _, f := range d.Fields {
		if f.Required {
			req = append(req, f.Name)
		}
	}
	return req
}

// SortColumn resolves an untrusted sort request against the allow-list,
// silently falling back to the default rather than erroring.
func (d *EntityDescriptor) SortColumn(requested string) string {
	for _, allowed := range d.AllowedSort {
		if requested == allowed {
			return allowed
		}
	}
	return d.DefaultSort
}

// SortOrder normalizes an untrusted order token to ASC or DESC.
func (d *EntityDescriptor) SortOrder(requested string) string {
	switch strings.ToUpper(strings.TrimSpace(requested)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	default:
		if d.DefaultOrder != "" {
			return strings.ToUpper(d.DefaultOrder)
		}
		return "ASC"
	}
}

// Validate checks descriptor invariants: every sort, search, and default-sort
// field must exist in the record shape, and required fields must be declared.
func (d *EntityDescriptor) Validate() error {
	if d.Kind == "" || d.Table == "" {
		return fmt.Errorf("resource: descriptor needs kind and table")
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("resource %s: no fields declared", d.Kind)
	}
	known := map[string]bool{"id": true, "created_at": true}
	for _, f := range d.Fields {
		known[f.Name] = true
		known[f.ColumnName()] = true
	}
	if d.OwnerColumn != "" {
		known[d.OwnerColumn] = true
	}
	if d.DefaultSort == "" || !known[d.DefaultSort] {
		return fmt.Errorf("resource %s: default sort %q not in record shape", d.Kind, d.DefaultSort)
	}
	for _, s := range d.AllowedSort {
		if !known[s] {
			return fmt.Errorf("resource %s: sort field %q not in record shape", d.Kind, s)
		}
	}
	for _, s := range d.SearchFields {
		if !known[s] {
			return fmt.Errorf("resource %s: search field %q not in record shape", d.Kind, s)
		}
	}
	if d.Comments != nil && (d.Comments.Table == "" || d.Comments.ParentColumn == "") {
		return fmt.Errorf("resource %s: incomplete comment descriptor", d.Kind)
	}
	return nil
}
