package constants

const (
	QueryMaxLimit = 100

	QueryDefaultLimitProjects = 10
	QueryDefaultLimitContacts = 20
	QueryDefaultLimitUsers    = 20

	FeaturedProjectsLimit = 6
	SearchProjectsLimit   = 20
	DashboardRecentLimit  = 5

	ShortDescriptionMaxLength = 200
)
