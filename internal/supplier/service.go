package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"
)

type CreateInput struct {
	Name       string
	Contact    string
	Location   string
	CrateCodes []string
	// Older clients send a single prefix instead of a list.
	CrateCodePrefix string
}

type UpdateInput struct {
	Name       *string
	Contact    *string
	Location   *string
	CrateCodes *[]string
}

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Vendor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("vendor name is required")
	}

	codes := in.CrateCodes
	if in.CrateCodePrefix != "" {
		codes = append([]string{in.CrateCodePrefix}, codes...)
	}

	v := models.Vendor{
		Name:       name,
		Contact:    strings.TrimSpace(in.Contact),
		Location:   strings.TrimSpace(in.Location),
		CrateCodes: NormalizeCodes(codes),
	}
	if err := store.Create(ctx, s.store, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Vendor, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("vendor name cannot be empty")
		}
		fields["name"] = name
		v.Name = name
	}
	if in.Contact != nil {
		v.Contact = strings.TrimSpace(*in.Contact)
		fields["contact"] = v.Contact
	}
	if in.Location != nil {
		v.Location = strings.TrimSpace(*in.Location)
		fields["location"] = v.Location
	}
	if in.CrateCodes != nil {
		v.CrateCodes = NormalizeCodes(*in.CrateCodes)
		// serializer fields are not applied through map updates
		encoded, err := encodeCodes(v.CrateCodes)
		if err != nil {
			return nil, err
		}
		fields["crate_codes"] = encoded
	}
	if len(fields) == 0 {
		return v, nil
	}

	if err := store.Update[models.Vendor](ctx, s.store, id, fields); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Vendor, error) {
	v, err := store.Get[models.Vendor](ctx, s.store, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("vendor %s not found", id)
	}
	return v, err
}

func (s *Service) List(ctx context.Context) ([]models.Vendor, error) {
	return store.All[models.Vendor](ctx, s.store, store.Asc("name"))
}

// NormalizeCodes trims codes, drops blanks and duplicates, keeping order.
func NormalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func encodeCodes(codes []string) (string, error) {
	b, err := json.Marshal(codes)
	if err != nil {
		return "", fmt.Errorf("encode crate codes: %w", err)
	}
	return string(b), nil
}
