package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	TimelinesDir      string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	SheetsAPIKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
