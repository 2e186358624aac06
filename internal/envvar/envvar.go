package envvar

const (
	// BgatlasEnv is the environment variable used to determine the environment
	BgatlasEnv = "BGATLAS_ENV"

	// BgatlasConfig is the environment variable used to locate the config file
	BgatlasConfig = "BGATLAS_CONFIG"

	// BgatlasAtlasDir is the environment variable used to override the atlas home
	BgatlasAtlasDir = "BGATLAS_ATLAS_DIR"

	// BgatlasDownloadDir is the environment variable used to override the intermediate download directory
	BgatlasDownloadDir = "BGATLAS_DOWNLOAD_DIR"

	// BgatlasRemoteURL is the environment variable used to override the remote atlas repository
	BgatlasRemoteURL = "BGATLAS_REMOTE_URL"

	// BgatlasLogLevel is the environment variable used to override the log level
	BgatlasLogLevel = "BGATLAS_LOG_LEVEL"
)
