package repocontants

const (
	TICKETS_COLLECTION = "tickets"
)
