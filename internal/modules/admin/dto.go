package admin

type RejectSellerRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type BadgeRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}
