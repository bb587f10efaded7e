package service

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"lakegate/internal/domain"
)

// Source kinds.
const (
	KindParquet   = "parquet"
	KindWarehouse = "db"
)

// SourceRef addresses one source by adapter kind and name.
type SourceRef struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// ParseSourceRef parses "parquet:FOLDER" or "db:TABLE"; a bare name defaults
// to the parquet kind.
func ParseSourceRef(s string) (SourceRef, error) {
	kind, name, found := strings.Cut(s, ":")
	if !found {
		return SourceRef{Kind: KindParquet, Name: s}, nil
	}
	if kind != KindParquet && kind != KindWarehouse {
		return SourceRef{}, domain.ErrValidation("unknown source kind %q", kind)
	}
	return SourceRef{Kind: kind, Name: name}, nil
}

// TransactionService is the fetch pipeline: authorize the principal for the
// named source, normalize query parameters into a FilterSpec, and delegate to
// the adapter for that source kind. Authorization always runs first, so a
// denied principal learns nothing about whether the source exists.
type TransactionService struct {
	parquet   domain.SourceAdapter
	warehouse domain.SourceAdapter
	authz     *AuthorizationService
	audit     domain.AuditRepository
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	parquet, warehouse domain.SourceAdapter,
	authz *AuthorizationService,
	audit domain.AuditRepository,
) *TransactionService {
	return &TransactionService{parquet: parquet, warehouse: warehouse, authz: authz, audit: audit}
}

// ListSources returns every known source across both adapters, sorted by
// kind then name.
func (s *TransactionService) ListSources(ctx context.Context) ([]SourceRef, error) {
	var refs []SourceRef

	folders, err := s.parquet.Sources(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range folders {
		refs = append(refs, SourceRef{Kind: KindParquet, Name: name})
	}

	tables, err := s.warehouse.Sources(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range tables {
		refs = append(refs, SourceRef{Kind: KindWarehouse, Name: name})
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind < refs[j].Kind
		}
		return refs[i].Name < refs[j].Name
	})
	return refs, nil
}

// Fetch runs the full pipeline for one source.
func (s *TransactionService) Fetch(ctx context.Context, p domain.ContextPrincipal, ref SourceRef, params url.Values) ([]domain.TransactionRecord, error) {
	adapter, err := s.adapterFor(ref.Kind)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, p, ref.Name); err != nil {
		_ = s.audit.Insert(ctx, &domain.AuditEntry{
			PrincipalName: p.Name,
			Action:        domain.AuditActionFetch,
			SourceName:    ref.Name,
			Status:        domain.AuditStatusDenied,
		})
		return nil, err
	}

	spec, err := domain.BuildFilterSpec(params)
	if err != nil {
		return nil, err
	}

	records, err := adapter.Fetch(ctx, ref.Name, spec)
	if err != nil {
		return nil, err
	}

	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: p.Name,
		Action:        domain.AuditActionFetch,
		SourceName:    ref.Name,
		Status:        domain.AuditStatusAllowed,
	})
	return records, nil
}

func (s *TransactionService) adapterFor(kind string) (domain.SourceAdapter, error) {
	switch kind {
	case KindParquet:
		return s.parquet, nil
	case KindWarehouse:
		return s.warehouse, nil
	default:
		return nil, domain.ErrValidation("unknown source kind %q", kind)
	}
}
