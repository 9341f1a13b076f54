package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	DatasetKey   string
	UserID       *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
