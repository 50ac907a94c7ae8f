package domain

var (
	MessageFailedBodyRequest = "failed to process body request"
)
