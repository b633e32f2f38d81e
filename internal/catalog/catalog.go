// Package catalog declares the entity kinds served by the resource engine.
// Adding a kind means adding a descriptor here; no handler or SQL code.
package catalog

import (
	"github.com/coursedesk/coursedesk/internal/resource"
)

// DefaultStudentPassword seeds accounts created without an explicit password;
// students are expected to change it on first login.
const DefaultStudentPassword = "Password123!"

// Assignments returns the descriptor for course assignments.
func Assignments() *resource.EntityDescriptor {
	return &resource.EntityDescriptor{
		Kind:  "assignments",
		Table: "assignments",
		Fields: []resource.Field{
			{Name: "title", Required: true},
			{Name: "description"},
			{Name: "due_date", Required: true},
			{Name: "attachment_url"},
		},
		ReadCap: resource.CapAuthenticated,
		Write: resource.WriteRules{
			Create: resource.CapAdmin,
			Update: resource.CapAdmin,
			Delete: resource.CapAdmin,
		},
		OwnerColumn:  "created_by",
		DefaultSort:  "due_date",
		DefaultOrder: "ASC",
		AllowedSort:  []string{"title", "due_date", "created_at"},
		SearchFields: []string{"title", "description"},
		Comments: &resource.CommentDescriptor{
			Table:        "assignment_comments",
			ParentColumn: "assignment_id",
		},
	}
}

// Discussions returns the descriptor for discussion topics. Topics are the
// one entity kind with ownership-based write control: any authenticated user
// may post, but only the author or an admin may edit or remove a topic.
func Discussions() *resource.EntityDescriptor {
	return &resource.EntityDescriptor{
		Kind:  "discussions",
		Table: "discussion_topics",
		Fields: []resource.Field{
			{Name: "subject", Required: true},
			{Name: "body", Required: true},
		},
		ReadCap: resource.CapAuthenticated,
		Write: resource.WriteRules{
			Create: resource.CapAuthenticated,
			Update: resource.CapOwner,
			Delete: resource.CapOwner,
		},
		OwnerColumn:  "user_id",
		DefaultSort:  "created_at",
		DefaultOrder: "DESC",
		AllowedSort:  []string{"subject", "created_at"},
		SearchFields: []string{"subject", "body"},
		Author:       &resource.AuthorJoin{Table: "users", FK: "user_id"},
		Comments: &resource.CommentDescriptor{
			Table:        "discussion_comments",
			ParentColumn: "topic_id",
		},
	}
}

// Resources returns the descriptor for course resources (links, files).
func Resources() *resource.EntityDescriptor {
	return &resource.EntityDescriptor{
		Kind:  "resources",
		Table: "resources",
		Fields: []resource.Field{
			{Name: "title", Required: true},
			{Name: "description"},
			{Name: "link"},
		},
		ReadCap: resource.CapAuthenticated,
		Write: resource.WriteRules{
			Create: resource.CapAdmin,
			Update: resource.CapAdmin,
			Delete: resource.CapAdmin,
		},
		OwnerColumn:  "created_by",
		DefaultSort:  "created_at",
		DefaultOrder: "DESC",
		AllowedSort:  []string{"title", "created_at"},
		SearchFields: []string{"title", "description"},
		Comments: &resource.CommentDescriptor{
			Table:        "resource_comments",
			ParentColumn: "resource_id",
		},
	}
}

// Weekly returns the descriptor for the week-by-week course breakdown.
func Weekly() *resource.EntityDescriptor {
	return &resource.EntityDescriptor{
		Kind:  "weekly",
		Table: "weekly_entries",
		Fields: []resource.Field{
			{Name: "week_number", Kind: resource.FieldPositiveInt, Required: true},
			{Name: "title", Required: true},
			{Name: "description"},
			{Name: "notes"},
			{Name: "links"},
		},
		ReadCap: resource.CapAuthenticated,
		Write: resource.WriteRules{
			Create: resource.CapAdmin,
			Update: resource.CapAdmin,
			Delete: resource.CapAdmin,
		},
		OwnerColumn:  "created_by",
		DefaultSort:  "week_number",
		DefaultOrder: "ASC",
		AllowedSort:  []string{"week_number", "title", "created_at"},
		SearchFields: []string{"title", "description", "notes"},
		Comments: &resource.CommentDescriptor{
			Table:        "weekly_comments",
			ParentColumn: "weekly_id",
		},
	}
}

// Students returns the descriptor for student account management. Students
// live in the users table scoped to role='student'; the credential hash is a
// hidden create-only field, so it never appears in responses and updates
// never touch it.
func Students() *resource.EntityDescriptor {
	return &resource.EntityDescriptor{
		Kind:  "students",
		Table: "users",
		Fields: []resource.Field{
			{Name: "name", Required: true},
			{Name: "email", Kind: resource.FieldEmail, Required: true},
			{Name: "student_id", Required: true},
			{
				Name:       "password",
				Column:     "password_hash",
				Kind:       resource.FieldPassword,
				CreateOnly: true,
				Hidden:     true,
				Default:    DefaultStudentPassword,
			},
			{Name: "role", Hidden: true, CreateOnly: true, Fixed: true, Default: "student"},
		},
		ReadCap: resource.CapAdmin,
		Write: resource.WriteRules{
			Create: resource.CapAdmin,
			Update: resource.CapAdmin,
			Delete: resource.CapAdmin,
		},
		Scope:        "role = 'student'",
		DefaultSort:  "created_at",
		DefaultOrder: "DESC",
		AllowedSort:  []string{"name", "student_id", "email", "created_at"},
		SearchFields: []string{"name", "student_id", "email"},
	}
}

// All returns every descriptor served by the portal.
func All() []*resource.EntityDescriptor {
	return []*resource.EntityDescriptor{
		Assignments(),
		Discussions(),
		Resources(),
		Weekly(),
		Students(),
	}
}
