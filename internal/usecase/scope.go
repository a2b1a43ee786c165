package usecase

import "github.com/xavierca1/lead-system/internal/entity"

// ScopeFor returns the lead filter a caller is allowed to see.
// Standard identities always get their own email as owner; ownerOverride only
// applies to admins, where a blank override means every owner. An identity
// without an email gets an error, never an empty filter.
func ScopeFor(id entity.Identity, ownerOverride string) (entity.LeadFilter, error) {
	if id.IsAdmin() {
		if entity.NormalizeEmail(id.Email) == "" {
			return entity.LeadFilter{}, unauthenticated()
		}
		return entity.LeadFilter{Owner: entity.NormalizeEmail(ownerOverride)}, nil
	}
	email := entity.NormalizeEmail(id.Email)
	if email == "" {
		return entity.LeadFilter{}, unauthenticated()
	}
	return entity.LeadFilter{Owner: email}, nil
}

// InScope reports whether the caller may see or mutate the lead.
func InScope(id entity.Identity, lead *entity.Lead) bool {
	if lead == nil {
		return false
	}
	email := entity.NormalizeEmail(id.Email)
	if email == "" {
		return false
	}
	if id.IsAdmin() {
		return true
	}
	return entity.NormalizeEmail(lead.Owner) == email
}

func requireIdentity(id entity.Identity) error {
	if entity.NormalizeEmail(id.Email) == "" {
		return unauthenticated()
	}
	return nil
}

func unauthenticated() error {
	return &DomainError{Code: CodeUnauthenticated, Message: "Sessão inválida."}
}
