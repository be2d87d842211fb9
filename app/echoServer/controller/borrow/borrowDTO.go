package borrow

type CreateRequestReq struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

type AdvanceReq struct {
	// Status is the target token, which must be the immediate successor
	// of the request's current status.
	Status string `json:"status" validate:"required"`
}

type WithdrawReq struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}
