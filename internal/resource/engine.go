package resource

import (
	"context"
	"errors"
	"strings"

	"github.com/coursedesk/coursedesk/internal/shared"
)

// Record is one persisted instance of an entity kind, as plain key-value
// pairs. Records are never cached across requests.
type Record map[string]any

// ListQuery carries untrusted list parameters. The engine resolves sort and
// order against the descriptor allow-list before they reach storage.
type ListQuery struct {
	Sort   string
	Order  string
	Search string
}

// Hasher is the opaque one-way credential hash capability.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Service is the generic entity/comment engine for a single descriptor.
type Service struct {
	desc   *EntityDescriptor
	repo   Repository
	hasher Hasher
}

// NewService constructs the engine for one entity kind.
func NewService(desc *EntityDescriptor, repo Repository, hasher Hasher) *Service {
	return &Service{desc: desc, repo: repo, hasher: hasher}
}

// Descriptor exposes the static configuration, e.g. for route mounting.
func (s *Service) Descriptor() *EntityDescriptor {
	return s.desc
}

// List returns records ordered by the descriptor default unless the caller
// requests an allow-listed sort; unrecognized sort fields silently fall back.
func (s *Service) List(ctx context.Context, p *shared.Principal, q ListQuery) ([]Record, error) {
	if err := s.authorize(p, s.desc.ReadCap); err != nil {
		return nil, err
	}
	normalized := ListQuery{
		Sort:   s.desc.SortColumn(q.Sort),
		Order:  s.desc.SortOrder(q.Order),
		Search: strings.TrimSpace(q.Search),
	}
	records, err := s.repo.List(ctx, s.desc, normalized)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	return records, nil
}

// Get returns a single record or NotFound.
func (s *Service) Get(ctx context.Context, p *shared.Principal, id int64) (Record, error) {
	if err := s.authorize(p, s.desc.ReadCap); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, shared.NewValidationError("id")
	}
	record, err := s.repo.Get(ctx, s.desc, id)
	if err != nil {
		return nil, s.storageOr(err)
	}
	return record, nil
}

// Create validates the payload, stamps ownership, and inserts the record.
// Validation failures surface before any write occurs.
func (s *Service) Create(ctx context.Context, p *shared.Principal, payload map[string]any) (int64, error) {
	if err := s.authorize(p, s.desc.Write.Create); err != nil {
		return 0, err
	}
	cols, vals, err := s.sanitize(payload, false)
	if err != nil {
		return 0, err
	}
	if s.desc.OwnerColumn != "" {
		cols = append(cols, s.desc.OwnerColumn)
		vals = append(vals, p.ID)
	}
	id, err := s.repo.Insert(ctx, s.desc, cols, vals)
	if err != nil {
		return 0, shared.StorageError(err)
	}
	return id, nil
}

// Update performs a full-field overwrite of every non-create-only field.
// Ownership-gated kinds resolve the owner before anything else, so a missing
// id yields NotFound ahead of validation.
func (s *Service) Update(ctx context.Context, p *shared.Principal, id int64, payload map[string]any) error {
	if id <= 0 {
		return shared.NewValidationError("id")
	}
	if err := s.authorizeRecord(ctx, p, s.desc.Write.Update, id); err != nil {
		return err
	}
	cols, vals, err := s.sanitize(payload, true)
	if err != nil {
		return err
	}
	found, err := s.repo.Update(ctx, s.desc, id, cols, vals)
	if err != nil {
		return shared.StorageError(err)
	}
	if !found {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the record and cascades to its comments atomically; either
// both disappear or neither does.
func (s *Service) Delete(ctx context.Context, p *shared.Principal, id int64) error {
	if id <= 0 {
		return shared.NewValidationError("id")
	}
	if err := s.authorizeRecord(ctx, p, s.desc.Write.Delete, id); err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, s.desc, id)
	if err != nil {
		return shared.StorageError(err)
	}
	if !found {
		return shared.ErrNotFound
	}
	return nil
}

// ListComments returns the comments attached to a parent record in creation
// order. An absent parent yields an empty sequence rather than NotFound.
func (s *Service) ListComments(ctx context.Context, p *shared.Principal, parentID int64) ([]Record, error) {
	if _, err := shared.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if parentID <= 0 {
		return nil, shared.NewValidationError(s.desc.Comments.ParentColumn)
	}
	comments, err := s.repo.Comments(ctx, s.desc, parentID)
	if err != nil {
		return nil, shared.StorageError(err)
	}
	return comments, nil
}

// AddComment stores a comment authored by the calling principal.
func (s *Service) AddComment(ctx context.Context, p *shared.Principal, parentID int64, payload map[string]any) (int64, error) {
	if _, err := shared.RequireAuthenticated(p); err != nil {
		return 0, err
	}
	var bad []string
	if parentID <= 0 {
		bad = append(bad, s.desc.Comments.ParentColumn)
	}
	body := shared.SanitizeText(payload["comment"])
	if body == "" {
		bad = append(bad, "comment")
	}
	if len(bad) > 0 {
		return 0, shared.NewValidationError(bad...)
	}
	id, err := s.repo.InsertComment(ctx, s.desc, parentID, p.ID, body)
	if err != nil {
		return 0, shared.StorageError(err)
	}
	return id, nil
}

// DeleteComment removes a comment after the owner-or-admin check against its
// immutable author.
func (s *Service) DeleteComment(ctx context.Context, p *shared.Principal, commentID int64) error {
	if _, err := shared.RequireAuthenticated(p); err != nil {
		return err
	}
	if commentID <= 0 {
		return shared.NewValidationError("id")
	}
	authorID, err := s.repo.CommentAuthor(ctx, s.desc, commentID)
	if err != nil {
		return s.storageOr(err)
	}
	if err := shared.RequireOwnerOrAdmin(authorID, p); err != nil {
		return err
	}
	if err := s.repo.DeleteComment(ctx, s.desc, commentID); err != nil {
		return shared.StorageError(err)
	}
	return nil
}

// authorize applies the capability check for operations that do not target an
// existing record.
func (s *Service) authorize(p *shared.Principal, cap Capability) error {
	switch cap {
	case CapAdmin:
		_, err := shared.RequireAdmin(p)
		return err
	case CapOwner:
		// Owner capability without a record collapses to authenticated;
		// record-targeted paths go through authorizeRecord.
		_, err := shared.RequireAuthenticated(p)
		return err
	default:
		_, err := shared.RequireAuthenticated(p)
		return err
	}
}

// authorizeRecord applies the capability check for a record-targeted write,
// resolving existence (and ownership where required) first.
func (s *Service) authorizeRecord(ctx context.Context, p *shared.Principal, cap Capability, id int64) error {
	if cap != CapOwner {
		if err := s.authorize(p, cap); err != nil {
			return err
		}
		return nil
	}
	if _, err := shared.RequireAuthenticated(p); err != nil {
		return err
	}
	ownerID, err := s.repo.Owner(ctx, s.desc, id)
	if err != nil {
		return s.storageOr(err)
	}
	return shared.RequireOwnerOrAdmin(ownerID, p)
}

// sanitize normalizes the raw payload into ordered column/value pairs and
// reports every missing or invalid field at once. Unknown payload keys are
// ignored.
func (s *Service) sanitize(payload map[string]any, forUpdate bool) ([]string, []any, error) {
	texts := make(map[string]string, len(s.desc.Fields))
	var required []string
	for _, f := range s.desc.Fields {
		if forUpdate && f.CreateOnly {
			continue
		}
		text := shared.SanitizeText(payload[f.Name])
		if f.Fixed {
			text = f.Default
		} else if !forUpdate && text == "" && f.Default != "" {
			text = f.Default
		}
		texts[f.Name] = text
		if f.Required {
			required = append(required, f.Name)
		}
	}

	var bad []string
	if err := shared.ValidateRequired(texts, required); err != nil {
		ve, _ := shared.AsValidation(err)
		bad = ve.Fields
	}

	var (
		cols []string
		vals []any
	)
	for _, f := range s.desc.Fields {
		if forUpdate && f.CreateOnly {
			continue
		}
		text := texts[f.Name]
		switch f.Kind {
		case FieldPositiveInt:
			if text == "" {
				continue
			}
			n, err := shared.CoercePositiveInt(text)
			if err != nil {
				bad = append(bad, f.Name)
				continue
			}
			cols = append(cols, f.ColumnName())
			vals = append(vals, n)
		case FieldEmail:
			if text == "" {
				continue
			}
			email, err := shared.ValidateEmail(text)
			if err != nil {
				bad = append(bad, f.Name)
				continue
			}
			cols = append(cols, f.ColumnName())
			vals = append(vals, email)
		case FieldPassword:
			if text == "" {
				continue
			}
			hash, err := s.hasher.Hash(text)
			if err != nil {
				return nil, nil, err
			}
			cols = append(cols, f.ColumnName())
			vals = append(vals, hash)
		default:
			if f.Required && text == "" {
				continue
			}
			cols = append(cols, f.ColumnName())
			vals = append(vals, text)
		}
	}
	if len(bad) > 0 {
		return nil, nil, shared.NewValidationError(bad...)
	}
	return cols, vals, nil
}

// storageOr passes domain sentinels through and wraps everything else as a
// storage fault.
func (s *Service) storageOr(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return shared.StorageError(err)
}
