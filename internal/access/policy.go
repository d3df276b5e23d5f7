package access

// Policy is the capability check consulted before mutating or sensitive
// operations. It is stateless: every check reads the configured sets at call
// time, so there is no session-level elevation to revoke.
type Policy struct {
	superAdminID int64
	adminIDs     map[int64]bool
}

func NewPolicy(superAdminID int64, adminIDs []int64) *Policy {
	ids := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = true
	}

	return &Policy{
		superAdminID: superAdminID,
		adminIDs:     ids,
	}
}

func (p *Policy) IsSuperAdmin(userID int64) bool {
	return userID != 0 && userID == p.superAdminID
}

// IsAdmin includes the super-admin: the configured distinction collapses to
// the same permission set for every current operation.
func (p *Policy) IsAdmin(userID int64) bool {
	return p.IsSuperAdmin(userID) || p.adminIDs[userID]
}

func (p *Policy) CanModerate(userID int64) bool {
	return p.IsAdmin(userID)
}

// CanEditProfile allows admins and the profile owner. ownerID may be zero
// when the submitter is unknown (seeded records), which leaves admins only.
func (p *Policy) CanEditProfile(userID, ownerID int64) bool {
	if p.IsAdmin(userID) {
		return true
	}

	return ownerID != 0 && userID == ownerID
}

func (p *Policy) CanDeleteProfile(userID int64) bool {
	return p.IsAdmin(userID)
}

func (p *Policy) CanExportCSV(userID int64) bool {
	return p.IsAdmin(userID)
}

// CanOpenAdminPanel is the one surface gated to the panel owner alone.
func (p *Policy) CanOpenAdminPanel(userID int64) bool {
	return p.IsSuperAdmin(userID)
}

func (p *Policy) SuperAdminID() int64 {
	return p.superAdminID
}

// AdminIDs returns all notification recipients: the configured admins plus
// the super-admin, deduplicated.
func (p *Policy) AdminIDs() []int64 {
	ids := make([]int64, 0, len(p.adminIDs)+1)
	for id := range p.adminIDs {
		ids = append(ids, id)
	}
	if p.superAdminID != 0 && !p.adminIDs[p.superAdminID] {
		ids = append(ids, p.superAdminID)
	}

	return ids
}
