package domain

// Viewer identifies the caller of a request. The zero value is anonymous.
type Viewer struct {
	UserID int64
	Role   UserRole
}

func (v Viewer) IsAdmin() bool { return v.Role == RoleAdmin }

// CanManage reports whether the viewer owns the resource or is an admin.
func (v Viewer) CanManage(ownerID int64) bool {
	return v.IsAdmin() || (v.UserID != 0 && v.UserID == ownerID)
}
