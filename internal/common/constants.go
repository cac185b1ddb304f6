package common

// Environment variable keys
const (
	EnvConfigFile      = "CONFIG_FILE"
	EnvModelsDir       = "MODELS_DIR"
	EnvModelBaseURL    = "MODEL_BASE_URL"
	EnvDataPath        = "DATA_PATH"
	EnvSpecialistSeed  = "SPECIALIST_SEED"
	EnvAPIPort         = "API_PORT"
	EnvMetricsPort     = "METRICS_PORT"
	EnvImportanceLimit = "IMPORTANCE_LIMIT"
	EnvFetchTimeout    = "FETCH_TIMEOUT"
)

// Configuration defaults
const (
	DefaultModelsDir       = "ml_models"
	DefaultAPIPort         = 8090
	DefaultMetricsPort     = 8080
	DefaultImportanceLimit = 8
)

// Common error messages
const (
	ErrMsgModelsDirRequired = "models directory is required"
)

// Validation constants
const (
	MinPort            = 1024
	MaxPort            = 65535
	MaxImportanceLimit = 64
)
